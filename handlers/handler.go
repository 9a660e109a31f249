package handlers

import (
	"fmt"
	"strconv"

	"foodiehub-api/middleware"
	"foodiehub-api/models"
	"foodiehub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler exposes the services over HTTP.
type Handler struct {
	accounts *services.AccountService
	catalog  *services.CatalogService
	orders   *services.OrderService
	log      *logrus.Entry
}

func New(accounts *services.AccountService, catalog *services.CatalogService, orders *services.OrderService, log *logrus.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		catalog:  catalog,
		orders:   orders,
		log:      log.WithField("component", "http"),
	}
}

// caller returns the actor set by the gate. Routes without a gate get the zero actor.
func caller(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

func idParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", models.ErrValidation, name, raw)
	}
	return uint(id), nil
}
