package handlers

import (
	"net/http"

	"foodiehub-api/models"
	"foodiehub-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range []models.OrderStatus{
		models.StatusPending, models.StatusPreparing, models.StatusOutForDelivery, models.StatusDelivered,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"initialState":   models.StatusPending,
		"transitions":    statemachine.GetAllTransitions(),
		"terminalStates": terminal,
		"description":    "FoodieHub order lifecycle",
	})
}

// Health reports liveness and catalog reachability.
func (h *Handler) Health(c *gin.Context) {
	n, err := h.catalog.CountFoods(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": "FoodieHub API"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "FoodieHub API",
		"foodItems": n,
	})
}
