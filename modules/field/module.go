package field

import (
	"embed"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/internal/geocode"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/infrastructure/persistence"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/presentation/controllers"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/field-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	facilityRepo := persistence.NewFacilityRepository()
	visitRepo := persistence.NewVisitRepository()

	var geocoder services.Geocoder
	if conf := configuration.Use(); conf.Geocoder.Enabled {
		geocoder = geocode.New(conf.Geocoder, app.Logger())
	}

	mustListService := services.NewMustListService(facilityRepo, visitRepo)
	app.RegisterServices(
		services.NewFacilityService(facilityRepo, geocoder),
		services.NewVisitService(visitRepo),
		mustListService,
		services.NewFacilityMergeService(facilityRepo, visitRepo),
		services.NewReportService(app.Pool(), facilityRepo, mustListService),
	)

	app.RegisterControllers(
		controllers.NewFacilityAPIController(app),
		controllers.NewVisitAPIController(app),
		controllers.NewFieldAdminController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "field"
}
