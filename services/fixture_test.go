package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"foodiehub-api/config"
	"foodiehub-api/events"
	"foodiehub-api/models"
	"foodiehub-api/payment"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) recorded() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.Config{DBDriver: config.DriverSQLite, DBDSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db     *gorm.DB
	orders *OrderService
	events *recordingPublisher

	customer *models.User
	other    *models.User
	admin    *models.User
	rider    *models.User
	rider2   *models.User

	burger *models.FoodItem
	fries  *models.FoodItem
}

func newFixture(t *testing.T, opts ...OrderOption) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	f := &fixture{
		db:     db,
		events: pub,
		orders: NewOrderService(db, payment.NewSimulatedVerifier(), pub, quietLogger(), opts...),
	}
	f.customer = seedUser(t, db, "Ayesha", "ayesha@example.com", models.RoleCustomer)
	f.other = seedUser(t, db, "Bilal", "bilal@example.com", models.RoleCustomer)
	f.admin = seedUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)
	f.rider = seedUser(t, db, "Rider One", "rider1@example.com", models.RoleDelivery)
	f.rider2 = seedUser(t, db, "Rider Two", "rider2@example.com", models.RoleDelivery)
	f.burger = seedFood(t, db, "Classic Burger", "Burger", 10.00)
	f.fries = seedFood(t, db, "Fries", "Sides", 5.00)
	return f
}

func seedUser(t *testing.T, db *gorm.DB, name, email string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedFood(t *testing.T, db *gorm.DB, name, category string, price float64) *models.FoodItem {
	t.Helper()
	f := &models.FoodItem{Name: name, Category: category, Price: price, Rating: models.DefaultRating, Image: "https://img.example/" + name}
	require.NoError(t, db.Create(f).Error)
	return f
}

func actor(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}

func address() models.ShippingAddress {
	return models.ShippingAddress{Address: "12 Lake Road", City: "Dhaka", PostalCode: "1212", Country: "Bangladesh"}
}

// placeStandard places 3 burgers and 1 fries for the fixture customer.
func (f *fixture) placeStandard(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{
		Items: []OrderItemInput{
			{FoodID: f.burger.ID, Qty: 3, UnitPrice: 10.00},
			{FoodID: f.fries.ID, Qty: 1, UnitPrice: 5.00},
		},
		ShippingAddress: address(),
		PaymentMethod:   models.PaymentCOD,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) outForDelivery(t *testing.T) *models.Order {
	t.Helper()
	ctx := context.Background()
	order := f.placeStandard(t)
	_, err := f.orders.AcceptOrder(ctx, order.ID, actor(f.admin))
	require.NoError(t, err)
	order, err = f.orders.AssignDelivery(ctx, order.ID, f.rider.ID, actor(f.admin))
	require.NoError(t, err)
	return order
}
