package modules

import (
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
)

// BuiltInModules in registration order: schema files apply in the same
// order and later modules look up services from earlier ones.
var BuiltInModules = []application.Module{
	core.NewModule(),
	catalog.NewModule(),
	field.NewModule(),
	orders.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
