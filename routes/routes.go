package routes

import (
	"foodiehub-api/handlers"
	"foodiehub-api/metrics"
	"foodiehub-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the engine with recovery, request logging, metrics and CORS.
func NewRouter(h *handlers.Handler, gate *middleware.Gate, log *logrus.Logger, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.PrometheusMiddleware())
	r.Use(middleware.CORS(corsOrigin))
	SetupRoutes(r, h, gate)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, gate *middleware.Gate) {
	handlers.RegisterValidators()

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ── Public routes ──────────────────────────────────────────────
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/food", h.ListFoods)
	api.GET("/food/:id", h.GetFood)
	api.GET("/state-machine", h.GetStateMachineInfo)

	// ── Any authenticated caller ───────────────────────────────────
	api.GET("/auth/profile", gate.Require(middleware.AnyAuthenticated), h.GetProfile)
	api.GET("/orders/:id", gate.Require(middleware.AnyAuthenticated), h.GetOrder)
	api.GET("/orders/:id/history", gate.Require(middleware.AnyAuthenticated), h.GetOrderHistory)

	// ── Customer routes ────────────────────────────────────────────
	api.POST("/orders", gate.Require(middleware.CustomerOnly), h.PlaceOrder)
	api.GET("/orders/myorders", gate.Require(middleware.CustomerOnly), h.GetMyOrders)

	// ── Delivery routes ────────────────────────────────────────────
	api.GET("/orders/mydeliveries", gate.Require(middleware.DeliveryOnly), h.GetMyDeliveries)
	api.PUT("/orders/:id/deliver", gate.Require(middleware.DeliveryOnly), h.DeliverOrder)

	// ── Staff routes (admin or delivery) ───────────────────────────
	api.PUT("/orders/:id/status", gate.Require(middleware.Staff), h.UpdateOrderStatus)

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("")
	admin.Use(gate.Require(middleware.AdminOnly))
	{
		admin.GET("/auth/delivery", h.ListDeliveryUsers)
		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users", h.AdminCreateUser)
		admin.POST("/food", h.CreateFood)
		admin.POST("/food/generate-image", h.GenerateImage)
		admin.DELETE("/food/:id", h.DeleteFood)
		admin.GET("/orders", h.AdminListOrders)
		admin.PUT("/orders/:id/assign", h.AssignDelivery)
	}
}
