package services

import (
	"foodiehub-api/models"

	"github.com/shopspring/decimal"
)

// OrderTotal sums qty*unitPrice over items in decimal and rounds to cents.
func OrderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	f, _ := total.Round(2).Float64()
	return f
}

func samePrice(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
