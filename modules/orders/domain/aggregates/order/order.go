package order

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyItems = errors.New("order has no items")
)

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusDone, StatusCancelled:
		return true
	}
	return false
}

type Item struct {
	ProductID uuid.UUID
	Quantity  int
}

type Order struct {
	id         uuid.UUID
	userID     uuid.UUID
	facilityID uuid.UUID
	status     Status
	comment    string
	items      []Item
	createdAt  time.Time
	updatedAt  time.Time
}

func New(userID, facilityID uuid.UUID, comment string, items []Item) Order {
	return Order{
		userID:     userID,
		facilityID: facilityID,
		status:     StatusNew,
		comment:    strings.TrimSpace(comment),
		items:      items,
	}
}

func Hydrate(
	id uuid.UUID,
	userID, facilityID uuid.UUID,
	status Status,
	comment string,
	items []Item,
	createdAt time.Time,
	updatedAt time.Time,
) Order {
	return Order{
		id:         id,
		userID:     userID,
		facilityID: facilityID,
		status:     status,
		comment:    comment,
		items:      items,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (o Order) ID() uuid.UUID         { return o.id }
func (o Order) UserID() uuid.UUID     { return o.userID }
func (o Order) FacilityID() uuid.UUID { return o.facilityID }
func (o Order) Status() Status        { return o.status }
func (o Order) Comment() string       { return o.comment }
func (o Order) Items() []Item         { return o.items }
func (o Order) CreatedAt() time.Time  { return o.createdAt }
func (o Order) UpdatedAt() time.Time  { return o.updatedAt }
func (o Order) IsZero() bool          { return o.id == uuid.Nil }

func (o Order) WithStatus(status Status) Order {
	o.status = status
	return o
}

// CreatedEvent is published after an order is stored.
type CreatedEvent struct {
	Order Order
}
