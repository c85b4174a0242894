package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

type userDirectory interface {
	GetOrCreateByFullName(ctx context.Context, fullName string) (user.User, bool, error)
}

type facilityDirectory interface {
	GetOrCreate(ctx context.Context, name, address string) (facility.Facility, bool, error)
	GetOrCreateService(ctx context.Context, kind string) (facility.Facility, bool, error)
}

type productCatalog interface {
	GetOrCreate(ctx context.Context, line product.Line, flavor string, category product.Category) (product.Product, bool, error)
}

// Resolver turns natural keys from spreadsheet cells into entity IDs,
// creating entities on first sight. Caches live for one run: later rows
// reuse what earlier rows resolved without re-querying storage. Absence is
// the create trigger, never an error; only storage failures propagate.
//
// Not safe for concurrent use. One run, one resolver.
type Resolver struct {
	users      userDirectory
	facilities facilityDirectory
	products   productCatalog

	userCache     map[string]uuid.UUID
	facilityCache map[string]uuid.UUID
	productCache  map[string]uuid.UUID
}

func NewResolver(users userDirectory, facilities facilityDirectory, products productCatalog) *Resolver {
	return &Resolver{
		users:         users,
		facilities:    facilities,
		products:      products,
		userCache:     make(map[string]uuid.UUID),
		facilityCache: make(map[string]uuid.UUID),
		productCache:  make(map[string]uuid.UUID),
	}
}

func (r *Resolver) ResolveUser(ctx context.Context, fullName string) (uuid.UUID, bool, error) {
	if id, ok := r.userCache[fullName]; ok {
		return id, false, nil
	}
	u, created, err := r.users.GetOrCreateByFullName(ctx, fullName)
	if err != nil {
		return uuid.Nil, false, err
	}
	r.userCache[fullName] = u.ID()
	return u.ID(), created, nil
}

func (r *Resolver) ResolveFacility(ctx context.Context, name, address string) (uuid.UUID, bool, error) {
	key := name + "|" + address
	if id, ok := r.facilityCache[key]; ok {
		return id, false, nil
	}
	f, created, err := r.facilities.GetOrCreate(ctx, name, address)
	if err != nil {
		return uuid.Nil, false, err
	}
	r.facilityCache[key] = f.ID()
	return f.ID(), created, nil
}

// ResolveServiceFacility resolves the synthesized facility used for rows
// that record an activity rather than a real visit location.
func (r *Resolver) ResolveServiceFacility(ctx context.Context, kind string) (uuid.UUID, bool, error) {
	key := facility.ServicePrefix + kind + "|"
	if id, ok := r.facilityCache[key]; ok {
		return id, false, nil
	}
	f, created, err := r.facilities.GetOrCreateService(ctx, kind)
	if err != nil {
		return uuid.Nil, false, err
	}
	r.facilityCache[key] = f.ID()
	return f.ID(), created, nil
}

func (r *Resolver) ResolveProduct(ctx context.Context, line product.Line, flavor string) (uuid.UUID, bool, error) {
	sku := normalize.DeriveSKU(string(line), flavor)
	if id, ok := r.productCache[sku]; ok {
		return id, false, nil
	}
	p, created, err := r.products.GetOrCreate(ctx, line, flavor, product.CategoryFlavor)
	if err != nil {
		return uuid.Nil, false, err
	}
	r.productCache[sku] = p.ID()
	return p.ID(), created, nil
}
