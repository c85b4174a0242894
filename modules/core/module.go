package core

import (
	"embed"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/infrastructure/persistence"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/presentation/controllers"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewUserService(persistence.NewUserRepository()),
	)

	app.RegisterControllers(
		controllers.NewUserAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "core"
}
