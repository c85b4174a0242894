package catalog

import (
	"embed"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/infrastructure/persistence"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/presentation/controllers"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
)

//go:embed infrastructure/persistence/schema/catalog-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewProductService(persistence.NewProductRepository()),
	)

	app.RegisterControllers(
		controllers.NewProductAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
