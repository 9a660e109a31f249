package models

import "time"

// DefaultRating is applied to new food items created without a rating.
const DefaultRating = 4.5

type FoodItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null;index"`
	Price       float64   `json:"price" gorm:"not null"`
	Description string    `json:"description"`
	Image       string    `json:"image" gorm:"not null"`
	Rating      float64   `json:"rating" gorm:"default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
