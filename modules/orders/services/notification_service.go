package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/google/uuid"

	productaggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	useraggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	facilityaggregate "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/domain/aggregates/order"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/telegram"
)

type userDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (useraggregate.User, error)
}

type facilityDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (facilityaggregate.Facility, error)
}

type productDirectory interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]productaggregate.Product, error)
}

// NotificationService forwards created orders to the distributor chat.
// Delivery is best effort: failures are logged and the order stands.
type NotificationService struct {
	pool       *pgxpool.Pool
	users      userDirectory
	facilities facilityDirectory
	products   productDirectory
	notifier   telegram.Notifier
	chatID     int64
	logger     *logrus.Logger
}

func NewNotificationService(
	pool *pgxpool.Pool,
	users userDirectory,
	facilities facilityDirectory,
	products productDirectory,
	notifier telegram.Notifier,
	chatID int64,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		pool:       pool,
		users:      users,
		facilities: facilities,
		products:   products,
		notifier:   notifier,
		chatID:     chatID,
		logger:     logger,
	}
}

// HandleCreated is the eventbus subscriber for order.CreatedEvent.
func (s *NotificationService) HandleCreated(event order.CreatedEvent) {
	ctx := composables.WithPool(context.Background(), s.pool)
	text := s.buildMessage(ctx, event.Order)
	if err := s.notifier.Notify(ctx, s.chatID, text); err != nil {
		s.logger.WithError(err).WithField("order", event.Order.ID()).Warn("order notification failed")
	}
}

func (s *NotificationService) buildMessage(ctx context.Context, o order.Order) string {
	ambassador := o.UserID().String()
	if u, err := s.users.GetByID(ctx, o.UserID()); err == nil {
		ambassador = u.FullName()
	}
	place := o.FacilityID().String()
	if f, err := s.facilities.GetByID(ctx, o.FacilityID()); err == nil {
		place = f.Name()
		if f.Address() != "" {
			place += ", " + f.Address()
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Новый заказ образцов</b>\n")
	fmt.Fprintf(&b, "Амбассадор: %s\n", ambassador)
	fmt.Fprintf(&b, "Точка: %s\n", place)

	names := s.productNames(ctx, o.Items())
	for _, item := range o.Items() {
		fmt.Fprintf(&b, "• %s — %d шт\n", names[item.ProductID], item.Quantity)
	}
	if o.Comment() != "" {
		fmt.Fprintf(&b, "Комментарий: %s\n", o.Comment())
	}
	return b.String()
}

func (s *NotificationService) productNames(ctx context.Context, items []order.Item) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		names[item.ProductID] = item.ProductID.String()
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).Warn("product lookup for notification failed")
		return names
	}
	for _, p := range products {
		label := string(p.Line())
		if p.Flavor() != "" {
			label += " " + p.Flavor()
		}
		names[p.ID()] = label
	}
	return names
}
