package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
)

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) GetPaginated(ctx context.Context, params *product.FindParams) ([]product.Product, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *ProductService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *ProductService) Create(ctx context.Context, dto *product.CreateDTO) (product.Product, error) {
	if dto == nil {
		return product.Product{}, errors.New("missing dto")
	}
	dto.Normalize()
	entity := product.New(product.ParseLine(dto.Line), dto.Flavor, product.Category(dto.Category))
	if dto.Price != "" {
		price, err := decimal.NewFromString(dto.Price)
		if err != nil {
			return product.Product{}, err
		}
		entity = entity.WithPrice(price)
	}
	return s.repo.Create(ctx, entity)
}

// GetOrCreate resolves a (line, flavor) pair to a product by its derived
// SKU, creating it on first sight. The second return reports creation.
func (s *ProductService) GetOrCreate(ctx context.Context, line product.Line, flavor string, category product.Category) (product.Product, bool, error) {
	candidate := product.New(line, flavor, category)
	existing, err := s.repo.GetBySKU(ctx, candidate.SKU())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, product.ErrNotFound) {
		return product.Product{}, false, err
	}
	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return product.Product{}, false, err
	}
	return created, true, nil
}

func (s *ProductService) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (product.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	return s.repo.Update(ctx, existing.WithPrice(price))
}
