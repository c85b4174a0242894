package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/domain/aggregates/order"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/eventbus"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/metrics"
)

type OrderService struct {
	repo      order.Repository
	publisher eventbus.EventBus
}

func NewOrderService(repo order.Repository, publisher eventbus.EventBus) *OrderService {
	return &OrderService{repo: repo, publisher: publisher}
}

func (s *OrderService) GetPaginated(ctx context.Context, params *order.FindParams) ([]order.Order, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the order, then publishes order.CreatedEvent. Subscribers
// run after the write: a failed notification never undoes the order.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, dto *order.CreateDTO) (order.Order, error) {
	if dto == nil {
		return order.Order{}, errors.New("missing dto")
	}
	dto.Normalize()

	items := make([]order.Item, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, order.Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	created, err := s.repo.Create(ctx, order.New(userID, dto.FacilityID, dto.Comment, items))
	if err != nil {
		return order.Order{}, err
	}

	metrics.SampleOrdersTotal.Inc()
	s.publisher.Publish(order.CreatedEvent{Order: created})
	return created, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (order.Order, error) {
	if !status.Valid() {
		return order.Order{}, errors.New("invalid status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
