package handlers

import (
	"net/http"

	"foodiehub-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required,role"`
}

// AdminListUsers returns every user, optionally filtered by ?role=
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.accounts.ListByRole(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminCreateUser creates a staff or customer account with an explicit role
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	user, err := h.accounts.CreateStaff(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"admin_id": caller(c).ID, "user_id": user.ID, "role": user.Role}).Info("staff account created")
	c.JSON(http.StatusCreated, user)
}

// AdminListOrders returns all orders, optionally filtered by ?status=
func (h *Handler) AdminListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context(), caller(c), orderFilter(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
