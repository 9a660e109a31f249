package models

import (
	"strings"
	"time"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusPreparing      OrderStatus = "Preparing"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

const (
	PaymentCOD           = "COD"
	PaymentOnlineBanking = "Online Banking"
)

type Order struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	UserID           uint            `json:"userId" gorm:"not null;index"`
	User             *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items            []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	ShippingAddress  ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod    string          `json:"paymentMethod" gorm:"not null;default:'COD'"`
	TotalPrice       float64         `json:"totalPrice" gorm:"not null"`
	Status           OrderStatus     `json:"status" gorm:"not null;default:'Pending';index"`
	DeliveryPersonID *uint           `json:"deliveryPersonId" gorm:"index"`
	DeliveryPerson   *User           `json:"deliveryPerson,omitempty" gorm:"foreignKey:DeliveryPersonID"`
	IsPaid           bool            `json:"isPaid" gorm:"not null;default:false"`
	PaidAt           *time.Time      `json:"paidAt"`
	IsDelivered      bool            `json:"isDelivered" gorm:"not null;default:false"`
	DeliveredAt      *time.Time      `json:"deliveredAt"`
	PaymentResult    *PaymentResult  `json:"paymentResult" gorm:"serializer:json"`
	// Version guards status transitions against concurrent writers.
	Version   uint      `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem is a snapshot of a catalog entry at the time the order was placed.
// It deliberately has no foreign key to FoodItem.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   uint    `json:"-" gorm:"not null;index"`
	FoodID    uint    `json:"foodId" gorm:"not null"`
	Name      string  `json:"name" gorm:"not null"`
	Qty       int     `json:"qty" gorm:"not null"`
	UnitPrice float64 `json:"unitPrice" gorm:"not null"`
	Image     string  `json:"image"`
}

type ShippingAddress struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// Complete reports whether every address field has non-blank text.
func (a ShippingAddress) Complete() bool {
	for _, f := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a ShippingAddress) Trimmed() ShippingAddress {
	return ShippingAddress{
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

type PaymentResult struct {
	TransactionID string     `json:"id"`
	Status        string     `json:"status"`
	Bank          string     `json:"bank"`
	AccountHolder string     `json:"accountHolder"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
