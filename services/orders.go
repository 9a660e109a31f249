package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodiehub-api/events"
	"foodiehub-api/metrics"
	"foodiehub-api/models"
	"foodiehub-api/payment"
	"foodiehub-api/statemachine"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	FoodID uint
	Qty    int
	// UnitPrice is what the client saw; zero means "not sent".
	UnitPrice float64
}

type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	PaymentResult   *models.PaymentResult
}

type OrderFilter struct {
	Status models.OrderStatus
}

// OrderService owns the order lifecycle: placement, the status state machine and
// read access rules.
type OrderService struct {
	db       *gorm.DB
	verifier payment.Verifier
	events   events.Publisher
	log      *logrus.Entry
	now      func() time.Time

	strictDeliveryReads bool
}

type OrderOption func(*OrderService)

// WithStrictDeliveryReads restricts delivery users to orders assigned to them.
func WithStrictDeliveryReads(strict bool) OrderOption {
	return func(s *OrderService) { s.strictDeliveryReads = strict }
}

// WithClock overrides the time source used for paid/delivered timestamps.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(db *gorm.DB, verifier payment.Verifier, publisher events.Publisher, log *logrus.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		db:       db,
		verifier: verifier,
		events:   publisher,
		log:      log.WithField("component", "orders"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder snapshots the requested catalog items into a new Pending order.
// The total is always computed here from catalog prices.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: no order items", models.ErrInvalidOrder)
	}
	address := in.ShippingAddress.Trimmed()
	if !address.Complete() {
		return nil, fmt.Errorf("%w: shipping address needs address, city, postalCode and country", models.ErrInvalidOrder)
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = models.PaymentCOD
	}
	if method != models.PaymentCOD && method != models.PaymentOnlineBanking {
		return nil, fmt.Errorf("%w: payment method must be %q or %q", models.ErrInvalidOrder, models.PaymentCOD, models.PaymentOnlineBanking)
	}

	items, err := s.snapshotItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:          customerID,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		TotalPrice:      OrderTotal(items),
		Status:          models.StatusPending,
		Version:         1,
	}

	if method == models.PaymentOnlineBanking {
		if in.PaymentResult == nil {
			return nil, fmt.Errorf("%w: online banking requires a payment result", models.ErrInvalidOrder)
		}
		verified, err := s.verifier.Verify(ctx, order.TotalPrice, *in.PaymentResult)
		if err != nil {
			return nil, err
		}
		paidAt := s.now()
		order.IsPaid = true
		order.PaidAt = &paidAt
		order.PaymentResult = &verified
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: customerID,
			Note:      "Order placed by customer",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(method).Inc()
	s.log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"customer_id":    customerID,
		"items":          len(items),
		"total":          order.TotalPrice,
		"payment_method": method,
	}).Info("order placed")
	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeOrderPlaced,
		OrderID:    order.ID,
		CustomerID: customerID,
		ToStatus:   models.StatusPending,
		ActorID:    customerID,
		ActorRole:  models.RoleCustomer,
		TotalPrice: order.TotalPrice,
		OccurredAt: order.CreatedAt,
	})

	return s.find(ctx, order.ID)
}

func (s *OrderService) snapshotItems(ctx context.Context, in []OrderItemInput) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(in))
	for i, it := range in {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: items[%d].qty must be greater than 0", models.ErrInvalidOrder, i)
		}
		ids = append(ids, it.FoodID)
	}

	var foods []models.FoodItem
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}
	byID := make(map[uint]models.FoodItem, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	items := make([]models.OrderItem, 0, len(in))
	for i, it := range in {
		food, ok := byID[it.FoodID]
		if !ok {
			return nil, fmt.Errorf("%w: items[%d]: food %d not found", models.ErrInvalidOrder, i, it.FoodID)
		}
		if it.UnitPrice != 0 && !samePrice(it.UnitPrice, food.Price) {
			return nil, fmt.Errorf("%w: items[%d]: price of %q is %.2f, not %.2f", models.ErrInvalidOrder, i, food.Name, food.Price, it.UnitPrice)
		}
		items = append(items, models.OrderItem{
			FoodID:    food.ID,
			Name:      food.Name,
			Qty:       it.Qty,
			UnitPrice: food.Price,
			Image:     food.Image,
		})
	}
	return items, nil
}

// AcceptOrder moves a Pending order to Preparing.
func (s *OrderService) AcceptOrder(ctx context.Context, orderID uint, actor models.Actor) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	t, err := statemachine.CanTransition(order.Status, statemachine.EventAccept, actor.Role)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, order, t, actor, map[string]any{}, "Order accepted by kitchen")
}

// AssignDelivery hands a Preparing order to a delivery user.
func (s *OrderService) AssignDelivery(ctx context.Context, orderID, deliveryPersonID uint, actor models.Actor) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	t, err := statemachine.CanTransition(order.Status, statemachine.EventAssign, actor.Role)
	if err != nil {
		return nil, err
	}

	var rider models.User
	err = s.db.WithContext(ctx).
		Where("id = ? AND role = ?", deliveryPersonID, models.RoleDelivery).
		First(&rider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: delivery person %d", models.ErrNotFound, deliveryPersonID)
	}
	if err != nil {
		return nil, fmt.Errorf("find delivery person: %w", err)
	}

	return s.commit(ctx, order, t, actor, map[string]any{
		"delivery_person_id": rider.ID,
	}, "Assigned to "+rider.Name)
}

// CompleteDelivery marks an order delivered and paid. Only the assignee may do this.
func (s *OrderService) CompleteDelivery(ctx context.Context, orderID uint, actor models.Actor) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	t, err := statemachine.CanTransition(order.Status, statemachine.EventComplete, actor.Role)
	if err != nil {
		return nil, err
	}
	if order.DeliveryPersonID == nil || *order.DeliveryPersonID != actor.ID {
		return nil, fmt.Errorf("%w: you are not the assigned delivery person for this order", models.ErrForbidden)
	}

	now := s.now()
	if order.IsPaid {
		// cash collection stamps paidAt at handoff; the online verification time stays in paymentResult
		s.log.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"prev_paid_at": order.PaidAt,
		}).Warn("overwriting paidAt of a prepaid order on delivery")
	}
	return s.commit(ctx, order, t, actor, map[string]any{
		"is_delivered": true,
		"delivered_at": now,
		"is_paid":      true,
		"paid_at":      now,
	}, "Order delivered to customer")
}

// UpdateStatus routes a requested target status to the matching transition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, actor models.Actor) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	event, ok := statemachine.EventFor(status)
	switch {
	case ok && event == statemachine.EventAccept:
		return s.AcceptOrder(ctx, orderID, actor)
	case ok && event == statemachine.EventComplete:
		return s.CompleteDelivery(ctx, orderID, actor)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	reason := fmt.Sprintf("cannot move from %s to %s", order.Status, status)
	if ok && event == statemachine.EventAssign {
		reason = fmt.Sprintf("%s requires a delivery assignment (PUT /api/orders/%d/assign)", status, order.ID)
	}
	return nil, &statemachine.TransitionError{From: order.Status, Reason: reason}
}

// commit applies t with a conditional write: it only lands if the order is still
// in t.From at the version that was read.
func (s *OrderService) commit(ctx context.Context, order *models.Order, t statemachine.Transition, actor models.Actor, updates map[string]any, note string) (*models.Order, error) {
	updates["status"] = t.To
	updates["version"] = gorm.Expr("version + ?", 1)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND version = ?", order.ID, t.From, order.Version).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update order %d: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d was modified concurrently; refetch and retry", models.ErrConflict, order.ID)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: t.From,
			ToStatus:   t.To,
			ChangedBy:  actor.ID,
			Note:       note,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(t.From), string(t.To)).Inc()
	updated, err := s.find(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     t.From,
		"to":       t.To,
		"actor_id": actor.ID,
	}).Info("order status changed")
	s.publish(ctx, events.OrderEvent{
		Type:             events.TypeOrderStatusChanged,
		OrderID:          updated.ID,
		CustomerID:       updated.UserID,
		FromStatus:       t.From,
		ToStatus:         t.To,
		ActorID:          actor.ID,
		ActorRole:        actor.Role,
		DeliveryPersonID: updated.DeliveryPersonID,
		TotalPrice:       updated.TotalPrice,
		OccurredAt:       updated.UpdatedAt,
	})
	return updated, nil
}

// GetOrder returns an order the actor is allowed to read.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint, actor models.Actor) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canRead(order, actor) {
		return nil, fmt.Errorf("%w: not authorized to view this order", models.ErrForbidden)
	}
	return order, nil
}

// History returns the status audit trail of an order, oldest first.
func (s *OrderService) History(ctx context.Context, orderID uint, actor models.Actor) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(ctx, orderID, actor); err != nil {
		return nil, err
	}
	history := []models.OrderStatusHistory{}
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}

func (s *OrderService) canRead(order *models.Order, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDelivery:
		if !s.strictDeliveryReads {
			return true
		}
		return order.DeliveryPersonID != nil && *order.DeliveryPersonID == actor.ID
	default:
		return order.UserID == actor.ID
	}
}

func (s *OrderService) ListMine(ctx context.Context, customerID uint) ([]models.Order, error) {
	return s.list(ctx, s.db.Where("user_id = ?", customerID))
}

func (s *OrderService) ListForDelivery(ctx context.Context, deliveryPersonID uint) ([]models.Order, error) {
	return s.list(ctx, s.db.Where("delivery_person_id = ?", deliveryPersonID))
}

func (s *OrderService) ListAll(ctx context.Context, actor models.Actor, f OrderFilter) ([]models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin only", models.ErrForbidden)
	}
	q := s.db
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	return s.list(ctx, q)
}

func (s *OrderService) list(ctx context.Context, q *gorm.DB) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.withAssociations(q.WithContext(ctx)).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) withAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("User").
		Preload("DeliveryPerson")
}

// find loads an order with its items and people.
func (s *OrderService) find(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.withAssociations(s.db.WithContext(ctx)).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", models.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

// load reads just the order row, which is all a transition needs.
func (s *OrderService) load(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", models.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

func (s *OrderService) publish(ctx context.Context, e events.OrderEvent) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithField("order_id", e.OrderID).Warn("failed to publish order event")
	}
}
