package handlers

import (
	"net/http"

	"foodiehub-api/services"

	"github.com/gin-gonic/gin"
)

type CreateFoodRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Description string   `json:"description"`
	Image       string   `json:"image" binding:"omitempty,url"`
	Rating      *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

type GenerateImageRequest struct {
	FoodName string `json:"foodName" binding:"required"`
	Category string `json:"category"`
}

// ListFoods returns the catalog, optionally filtered by ?category= (public)
func (h *Handler) ListFoods(c *gin.Context) {
	foods, err := h.catalog.ListFoods(c.Request.Context(), services.FoodFilter{Category: c.Query("category")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

// GetFood returns a single catalog entry (public)
func (h *Handler) GetFood(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	food, err := h.catalog.GetFood(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// CreateFood adds a catalog entry (admin)
func (h *Handler) CreateFood(c *gin.Context) {
	var req CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	food, err := h.catalog.CreateFood(c.Request.Context(), services.CreateFoodInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Rating:      req.Rating,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

// GenerateImage suggests a placeholder image URL for a dish (admin)
func (h *Handler) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	category := req.Category
	if category == "" {
		category = "food"
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": h.catalog.PlaceholderImage(req.FoodName, category)})
}

// DeleteFood removes a catalog entry (admin)
func (h *Handler) DeleteFood(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.catalog.DeleteFood(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food removed"})
}
