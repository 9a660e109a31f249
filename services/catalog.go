package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"foodiehub-api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultPlaceholderBase serves keyword-matched stock images.
const DefaultPlaceholderBase = "https://loremflickr.com/400/300/"

type CreateFoodInput struct {
	Name        string
	Category    string
	Price       float64
	Description string
	Image       string
	Rating      *float64
}

type FoodFilter struct {
	Category string
}

// CatalogService manages the food catalog.
type CatalogService struct {
	db              *gorm.DB
	log             *logrus.Entry
	placeholderBase string
}

func NewCatalogService(db *gorm.DB, log *logrus.Logger, placeholderBase string) *CatalogService {
	if placeholderBase == "" {
		placeholderBase = DefaultPlaceholderBase
	}
	return &CatalogService{
		db:              db,
		log:             log.WithField("component", "catalog"),
		placeholderBase: placeholderBase,
	}
}

func (s *CatalogService) ListFoods(ctx context.Context, f FoodFilter) ([]models.FoodItem, error) {
	foods := []models.FoodItem{}
	q := s.db.WithContext(ctx).Order("id asc")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if err := q.Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

func (s *CatalogService) GetFood(ctx context.Context, id uint) (*models.FoodItem, error) {
	var food models.FoodItem
	if err := s.db.WithContext(ctx).First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food %d", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get food %d: %w", id, err)
	}
	return &food, nil
}

func (s *CatalogService) CreateFood(ctx context.Context, in CreateFoodInput) (*models.FoodItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", models.ErrValidation)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", models.ErrValidation)
	}
	rating := models.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}
	if rating < 0 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 0 and 5", models.ErrValidation)
	}

	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = s.PlaceholderImage(in.Name, in.Category)
	}

	food := models.FoodItem{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		Image:       image,
		Rating:      rating,
	}
	if err := s.db.WithContext(ctx).Create(&food).Error; err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	s.log.WithFields(logrus.Fields{"food_id": food.ID, "name": food.Name}).Info("food item created")
	return &food, nil
}

// DeleteFood removes a catalog entry. Past orders keep their own snapshot.
func (s *CatalogService) DeleteFood(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.FoodItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete food %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: food %d", models.ErrNotFound, id)
	}
	s.log.WithField("food_id", id).Info("food item removed")
	return nil
}

// PlaceholderImage builds a keyword image URL from category and name.
func (s *CatalogService) PlaceholderImage(name, category string) string {
	keywords := url.QueryEscape(category + "," + name)
	return s.placeholderBase + strings.ReplaceAll(keywords, "+", "%20")
}

// CountFoods reports how many items are in the catalog.
func (s *CatalogService) CountFoods(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.FoodItem{}).Count(&n).Error
	return n, err
}
