package events

import (
	"context"
	"strings"
	"time"

	"foodiehub-api/models"

	"github.com/sirupsen/logrus"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is emitted after an order write commits.
type OrderEvent struct {
	Type             string             `json:"type"`
	OrderID          uint               `json:"orderId"`
	CustomerID       uint               `json:"customerId"`
	FromStatus       models.OrderStatus `json:"fromStatus,omitempty"`
	ToStatus         models.OrderStatus `json:"toStatus"`
	ActorID          uint               `json:"actorId"`
	ActorRole        models.UserRole    `json:"actorRole"`
	DeliveryPersonID *uint              `json:"deliveryPersonId,omitempty"`
	TotalPrice       float64            `json:"totalPrice"`
	OccurredAt       time.Time          `json:"occurredAt"`
}

// RoutingKey is "order.<status>", e.g. order.out_for_delivery.
func (e OrderEvent) RoutingKey() string {
	if e.Type == TypeOrderPlaced {
		return TypeOrderPlaced
	}
	return "order." + strings.ToLower(strings.ReplaceAll(string(e.ToStatus), " ", "_"))
}

// Publisher delivers order events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// LogPublisher writes events to the log; used when no broker is configured.
type LogPublisher struct {
	log *logrus.Entry
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log.WithField("component", "events")}
}

func (p *LogPublisher) Publish(_ context.Context, e OrderEvent) error {
	p.log.WithFields(logrus.Fields{
		"routing_key": e.RoutingKey(),
		"order_id":    e.OrderID,
		"from":        e.FromStatus,
		"to":          e.ToStatus,
		"actor_id":    e.ActorID,
	}).Info("order event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
