package seed

import (
	"context"
	"fmt"

	"foodiehub-api/services"

	"github.com/sirupsen/logrus"
)

const unsplashParams = "?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60"

func rating(r float64) *float64 { return &r }

// DefaultFoods is the starter menu loaded into an empty catalog.
var DefaultFoods = []services.CreateFoodInput{
	{
		Name:        "Truffle Mushroom Burger",
		Category:    "Burger",
		Price:       18.99,
		Rating:      rating(4.8),
		Image:       "https://images.unsplash.com/photo-1568901346375-23c9450c58cd" + unsplashParams,
		Description: "Juicy beef patty topped with truffle oil, swiss cheese, and sautéed mushrooms.",
	},
	{
		Name:        "Margherita Pizza",
		Category:    "Pizza",
		Price:       14.50,
		Rating:      rating(4.5),
		Image:       "https://images.unsplash.com/photo-1604382354936-07c5d9983bd3" + unsplashParams,
		Description: "Classic tomato sauce, fresh mozzarella, and basil on a wood-fired crust.",
	},
	{
		Name:        "Salmon Poke Bowl",
		Category:    "Healthy",
		Price:       22.00,
		Rating:      rating(4.9),
		Image:       "https://images.unsplash.com/photo-1546069901-ba9599a7e63c" + unsplashParams,
		Description: "Fresh salmon, avocado, edamame, and mango served over sushi rice.",
	},
	{
		Name:        "Spicy Miso Ramen",
		Category:    "Asian",
		Price:       16.00,
		Rating:      rating(4.7),
		Image:       "https://images.unsplash.com/photo-1557872943-16a5acbcbce3" + unsplashParams,
		Description: "Rich miso broth with spicy chili oil, chashu pork, and soft-boiled egg.",
	},
	{
		Name:        "Crispy Chicken Tacos",
		Category:    "Mexican",
		Price:       12.99,
		Rating:      rating(4.6),
		Image:       "https://images.unsplash.com/photo-1613514785940-daed07799d9b" + unsplashParams,
		Description: "Crispy fried chicken with slaw and spicy mayo in soft corn tortillas.",
	},
	{
		Name:        "Chocolate Lava Cake",
		Category:    "Dessert",
		Price:       9.50,
		Rating:      rating(4.9),
		Image:       "https://images.unsplash.com/photo-1617305855685-6187747e622b" + unsplashParams,
		Description: "Warm chocolate cake with a molten center, served with vanilla bean ice cream.",
	},
}

// Catalog loads DefaultFoods when the catalog is empty and reports how many were added.
func Catalog(ctx context.Context, catalog *services.CatalogService, log *logrus.Logger) (int, error) {
	n, err := catalog.CountFoods(ctx)
	if err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, f := range DefaultFoods {
		if _, err := catalog.CreateFood(ctx, f); err != nil {
			return 0, fmt.Errorf("seed %q: %w", f.Name, err)
		}
	}
	log.WithField("count", len(DefaultFoods)).Info("catalog seeded with initial food items")
	return len(DefaultFoods), nil
}

// Admin makes sure the bootstrap admin account exists. A blank email is a no-op.
func Admin(ctx context.Context, accounts *services.AccountService, email, password string, log *logrus.Logger) error {
	if email == "" {
		return nil
	}
	if err := accounts.EnsureAdmin(ctx, email, password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.WithField("email", email).Info("bootstrap admin ready")
	return nil
}
