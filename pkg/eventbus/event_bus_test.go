package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/eventbus"
)

type orderCreated struct {
	OrderID string
}

func TestPublishMatchesSignature(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	var got []string
	bus.Subscribe(func(e orderCreated) {
		got = append(got, e.OrderID)
	})
	bus.Subscribe(func(s string) {
		t.Error("string handler must not fire for orderCreated")
	})

	bus.Publish(orderCreated{OrderID: "o-1"})
	bus.Publish(orderCreated{OrderID: "o-2"})

	assert.Equal(t, []string{"o-1", "o-2"}, got)
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	fired := false
	bus.Subscribe(func(e orderCreated) { panic("boom") })
	bus.Subscribe(func(e orderCreated) { fired = true })

	bus.Publish(orderCreated{OrderID: "o-3"})
	assert.True(t, fired)
}

func TestUnsubscribeAndClear(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	h := func(e orderCreated) {}
	bus.Subscribe(h)
	assert.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(h)
	assert.Equal(t, 0, bus.SubscribersCount())

	bus.Subscribe(func(e orderCreated) {})
	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())
}
