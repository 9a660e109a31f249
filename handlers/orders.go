package handlers

import (
	"net/http"

	"foodiehub-api/models"
	"foodiehub-api/services"

	"github.com/gin-gonic/gin"
)

type OrderItemRequest struct {
	FoodID    uint    `json:"foodId" binding:"required"`
	Qty       int     `json:"qty" binding:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" binding:"gte=0"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"paymentmethod"`
	PaymentResult   *models.PaymentResult  `json:"paymentResult"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,orderstatus"`
}

type AssignDeliveryRequest struct {
	DeliveryPersonID uint `json:"deliveryPersonId" binding:"required"`
}

func orderFilter(c *gin.Context) services.OrderFilter {
	return services.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	items := make([]services.OrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = services.OrderItemInput{FoodID: it.FoodID, Qty: it.Qty, UnitPrice: it.UnitPrice}
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), caller(c).ID, services.PlaceOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentResult:   req.PaymentResult,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), caller(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetMyDeliveries returns orders assigned to the calling delivery user
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	orders, err := h.orders.ListForDelivery(c.Request.Context(), caller(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order to its owner, an admin, or delivery staff
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id, caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderHistory returns the status audit trail of an order
func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	history, err := h.orders.History(c.Request.Context(), id, caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// UpdateOrderStatus moves an order to the requested status through the state machine
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AssignDelivery hands a Preparing order to a delivery user (admin)
func (h *Handler) AssignDelivery(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req AssignDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	order, err := h.orders.AssignDelivery(c.Request.Context(), id, req.DeliveryPersonID, caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeliverOrder marks the caller's assigned order as delivered
func (h *Handler) DeliverOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.orders.CompleteDelivery(c.Request.Context(), id, caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
