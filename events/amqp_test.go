package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"foodiehub-api/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestAMQPPublisherPublish(t *testing.T) {
	ch := &MockChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "foodiehub.orders"}
	rider := uint(9)
	ev := OrderEvent{
		Type:             TypeOrderStatusChanged,
		OrderID:          42,
		FromStatus:       models.StatusPreparing,
		ToStatus:         models.StatusOutForDelivery,
		ActorID:          1,
		ActorRole:        models.RoleAdmin,
		DeliveryPersonID: &rider,
		OccurredAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	ch.On("PublishWithContext", "foodiehub.orders", "order.out_for_delivery", false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got OrderEvent
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.CorrelationId == "42" &&
				msg.MessageId != "" &&
				got.OrderID == 42 && *got.DeliveryPersonID == 9
		})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), ev))
	ch.AssertExpectations(t)
}

func TestAMQPPublisherWrapsErrors(t *testing.T) {
	ch := &MockChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "x"}
	boom := errors.New("channel closed")
	ch.On("PublishWithContext", "x", "order.placed", false, false, mock.Anything).Return(boom)

	err := p.Publish(context.Background(), OrderEvent{Type: TypeOrderPlaced, OrderID: 1, ToStatus: models.StatusPending})
	assert.ErrorIs(t, err, boom)

	ch.On("Close").Return(nil)
	assert.NoError(t, p.Close())
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.placed", OrderEvent{Type: TypeOrderPlaced, ToStatus: models.StatusPending}.RoutingKey())
	assert.Equal(t, "order.preparing", OrderEvent{Type: TypeOrderStatusChanged, ToStatus: models.StatusPreparing}.RoutingKey())
	assert.Equal(t, "order.delivered", OrderEvent{Type: TypeOrderStatusChanged, ToStatus: models.StatusDelivered}.RoutingKey())
}

func TestLogPublisher(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := NewLogPublisher(log)
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{Type: TypeOrderPlaced}))
	assert.NoError(t, p.Close())
}
