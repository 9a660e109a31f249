package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodiehub-api/auth"
	"foodiehub-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, issuer *auth.Issuer, capability Capability) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.GET("/probe", NewGate(issuer).Require(capability), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	return r
}

func tokenFor(t *testing.T, issuer *auth.Issuer, id uint, role models.UserRole) string {
	t.Helper()
	tok, err := issuer.GenerateToken(&models.User{ID: id, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func TestCapabilityAllows(t *testing.T) {
	cases := []struct {
		capability Capability
		role       models.UserRole
		want       bool
	}{
		{AnyAuthenticated, models.RoleCustomer, true},
		{AnyAuthenticated, models.RoleDelivery, true},
		{AnyAuthenticated, "ghost", false},
		{CustomerOnly, models.RoleCustomer, true},
		{CustomerOnly, models.RoleAdmin, false},
		{AdminOnly, models.RoleAdmin, true},
		{AdminOnly, models.RoleDelivery, false},
		{DeliveryOnly, models.RoleDelivery, true},
		{DeliveryOnly, models.RoleCustomer, false},
		{Staff, models.RoleAdmin, true},
		{Staff, models.RoleDelivery, true},
		{Staff, models.RoleCustomer, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.capability.Allows(tc.role), "%s/%s", tc.capability, tc.role)
	}
}

func TestGateRequire(t *testing.T) {
	issuer := auth.NewIssuer([]byte("gate-secret"), time.Hour)
	r := newRouter(t, issuer, Staff)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"customer", "Bearer " + tokenFor(t, issuer, 1, models.RoleCustomer), http.StatusForbidden},
		{"delivery", "Bearer " + tokenFor(t, issuer, 2, models.RoleDelivery), http.StatusOK},
		{"admin", "Bearer " + tokenFor(t, issuer, 3, models.RoleAdmin), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.status != http.StatusOK {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestGateInjectsActor(t *testing.T) {
	issuer := auth.NewIssuer([]byte("gate-secret"), time.Hour)
	r := newRouter(t, issuer, AnyAuthenticated)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 42, models.RoleDelivery))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"role":"delivery"}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-123", entry.Data["request_id"])
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])
	assert.Equal(t, logrus.InfoLevel, entry.Level)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader), "a request id is generated when absent")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://app.example"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}
