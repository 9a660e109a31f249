package middleware

import (
	"errors"
	"net/http"
	"strings"

	"foodiehub-api/auth"
	"foodiehub-api/models"

	"github.com/gin-gonic/gin"
)

// Capability names what an endpoint requires of its caller.
type Capability string

const (
	AnyAuthenticated Capability = "any-authenticated"
	CustomerOnly     Capability = "customer"
	AdminOnly        Capability = "admin"
	DeliveryOnly     Capability = "delivery"
	// Staff is admin or delivery.
	Staff Capability = "staff"
)

var capabilityRoles = map[Capability][]models.UserRole{
	CustomerOnly: {models.RoleCustomer},
	AdminOnly:    {models.RoleAdmin},
	DeliveryOnly: {models.RoleDelivery},
	Staff:        {models.RoleAdmin, models.RoleDelivery},
}

// Allows reports whether role satisfies the capability.
func (c Capability) Allows(role models.UserRole) bool {
	if c == AnyAuthenticated {
		return role.Valid()
	}
	for _, r := range capabilityRoles[c] {
		if r == role {
			return true
		}
	}
	return false
}

const actorKey = "actor"

// Gate resolves bearer tokens and enforces a per-route capability.
type Gate struct {
	tokens *auth.Issuer
}

func NewGate(tokens *auth.Issuer) *Gate {
	return &Gate{tokens: tokens}
}

// Require validates the JWT, checks the capability and injects the actor into context
func (g *Gate) Require(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := g.tokens.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			msg := "Not authorized"
			if errors.Is(err, models.ErrUnauthenticated) {
				msg = "Not authorized: " + strings.TrimPrefix(err.Error(), models.ErrUnauthenticated.Error()+": ")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		if !capability.Allows(actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied. Required role(s): " + rolesString(capability),
			})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func rolesString(capability Capability) string {
	roles := capabilityRoles[capability]
	if len(roles) == 0 {
		return string(capability)
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// ActorFrom extracts the caller set by Require.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	val, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	return actor, ok
}
