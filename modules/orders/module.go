package orders

import (
	"embed"

	catalogservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/services"
	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/infrastructure/persistence"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/presentation/controllers"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/telegram"
)

//go:embed infrastructure/persistence/schema/orders-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	orderRepo := persistence.NewOrderRepository()
	app.RegisterServices(
		services.NewOrderService(orderRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewOrderAPIController(app),
	)

	// Merged facilities must carry their orders along.
	merge := app.Service(fieldservices.FacilityMergeService{}).(*fieldservices.FacilityMergeService)
	merge.AddRelinker(orderRepo.(*persistence.OrderRepository))

	conf := configuration.Use()
	notifier := telegram.NewNopNotifier()
	if conf.Telegram.Enabled() {
		bot, err := telegram.NewBotNotifier(conf.Telegram.BotToken, app.Logger())
		if err != nil {
			app.Logger().WithError(err).Warn("telegram bot unavailable, order notifications disabled")
		} else {
			notifier = bot
		}
	}
	notifications := services.NewNotificationService(
		app.Pool(),
		app.Service(coreservices.UserService{}).(*coreservices.UserService),
		app.Service(fieldservices.FacilityService{}).(*fieldservices.FacilityService),
		app.Service(catalogservices.ProductService{}).(*catalogservices.ProductService),
		notifier,
		conf.Telegram.DistributorChatID,
		app.Logger(),
	)
	app.EventPublisher().Subscribe(notifications.HandleCreated)

	return nil
}

func (m *Module) Name() string {
	return "orders"
}
