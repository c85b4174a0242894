package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	productaggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	useraggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	facilityaggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/domain/aggregates/order"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/eventbus"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]order.Order{}}
}

func (r *fakeOrderRepo) GetPaginated(_ context.Context, _ *order.FindParams) ([]order.Order, int64, error) {
	var out []order.Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o order.Order) (order.Order, error) {
	if len(o.Items()) == 0 {
		return order.Order{}, order.ErrEmptyItems
	}
	created := order.Hydrate(uuid.New(), o.UserID(), o.FacilityID(), o.Status(), o.Comment(), o.Items(), time.Now(), time.Now())
	r.orders[created.ID()] = created
	return created, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status order.Status) (order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	updated := o.WithStatus(status)
	r.orders[id] = updated
	return updated, nil
}

func (r *fakeOrderRepo) ReassignFacility(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func TestCreatePublishesCreatedEvent(t *testing.T) {
	logger := logrus.New()
	bus := eventbus.NewEventPublisher(logger)
	repo := newFakeOrderRepo()
	svc := services.NewOrderService(repo, bus)

	var received []order.CreatedEvent
	bus.Subscribe(func(event order.CreatedEvent) {
		received = append(received, event)
	})

	userID := uuid.New()
	dto := &order.CreateDTO{
		FacilityID: uuid.New(),
		Comment:    "две пачки на пробу",
		Items:      []order.ItemDTO{{ProductID: uuid.New(), Quantity: 2}},
	}
	created, err := svc.Create(context.Background(), userID, dto)
	require.NoError(t, err)
	require.Equal(t, order.StatusNew, created.Status())
	require.Equal(t, userID, created.UserID())

	require.Len(t, received, 1)
	require.Equal(t, created.ID(), received[0].Order.ID())
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	logger := logrus.New()
	bus := eventbus.NewEventPublisher(logger)
	svc := services.NewOrderService(newFakeOrderRepo(), bus)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), order.Status("mangled"))
	require.Error(t, err)
}

type captureNotifier struct {
	chatID int64
	texts  []string
}

func (n *captureNotifier) Notify(_ context.Context, chatID int64, text string) error {
	n.chatID = chatID
	n.texts = append(n.texts, text)
	return nil
}

type stubUsers struct{ u useraggregate.User }

func (s stubUsers) GetByID(context.Context, uuid.UUID) (useraggregate.User, error) {
	return s.u, nil
}

type stubFacilities struct{ f facilityaggregate.Facility }

func (s stubFacilities) GetByID(context.Context, uuid.UUID) (facilityaggregate.Facility, error) {
	return s.f, nil
}

type stubProducts struct{ products []productaggregate.Product }

func (s stubProducts) GetByIDs(context.Context, []uuid.UUID) ([]productaggregate.Product, error) {
	return s.products, nil
}

func TestNotificationMessageNamesEverything(t *testing.T) {
	ambassador := useraggregate.Hydrate(uuid.New(), "Иван Петров", 0, useraggregate.RoleAmbassador, time.Now(), time.Now())
	cafe := facilityaggregate.Hydrate(uuid.New(), "Кафе Ромашка", "ул. Ленина, 1", 0, 0, false, true, time.Now(), time.Now())
	productID := uuid.New()
	ananas := productaggregate.Hydrate(
		productID, "bliss_ananas", productaggregate.LineBliss, "Ананас",
		productaggregate.CategoryFlavor, decimal.NullDecimal{}, time.Now(), time.Now(),
	)

	notifier := &captureNotifier{}
	svc := services.NewNotificationService(
		nil,
		stubUsers{ambassador},
		stubFacilities{cafe},
		stubProducts{[]productaggregate.Product{ananas}},
		notifier,
		42,
		logrus.New(),
	)

	o := order.Hydrate(
		uuid.New(), ambassador.ID(), cafe.ID(), order.StatusNew, "на пробу",
		[]order.Item{{ProductID: productID, Quantity: 3}}, time.Now(), time.Now(),
	)
	svc.HandleCreated(order.CreatedEvent{Order: o})

	require.EqualValues(t, 42, notifier.chatID)
	require.Len(t, notifier.texts, 1)
	text := notifier.texts[0]
	require.Contains(t, text, "Иван Петров")
	require.Contains(t, text, "Кафе Ромашка, ул. Ленина, 1")
	require.Contains(t, text, "Bliss Ананас — 3 шт")
	require.Contains(t, text, "на пробу")
}
