package services

import (
	"context"
	"testing"
	"time"

	"foodiehub-api/auth"
	"foodiehub-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccounts(t *testing.T) (*AccountService, *auth.Issuer) {
	t.Helper()
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	svc := NewAccountService(newTestDB(t), issuer, quietLogger())
	svc.cost = bcrypt.MinCost
	return svc, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, issuer := newAccounts(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Nadia", "  Nadia@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Equal(t, "nadia@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	got, err := issuer.Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{ID: user.ID, Role: models.RoleCustomer}, got)

	logged, token2, err := svc.Authenticate(ctx, "NADIA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token2)

	_, _, err = svc.Authenticate(ctx, "nadia@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	_, _, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, _, err = svc.Register(ctx, "Nadia Again", "nadia@example.com", "secret456")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAccounts(t)
	for name, in := range map[string][3]string{
		"no name":        {"", "a@example.com", "secret123"},
		"bad email":      {"A", "not-an-email", "secret123"},
		"short password": {"A", "a@example.com", "123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), in[0], in[1], in[2])
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestStaffAndRoleListing(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	rider, err := svc.CreateStaff(ctx, "Rafi", "rafi@example.com", "secret123", models.RoleDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDelivery, rider.Role)

	_, err = svc.CreateStaff(ctx, "X", "x@example.com", "secret123", "chef")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = svc.Register(ctx, "Cust", "cust@example.com", "secret123")
	require.NoError(t, err)

	riders, err := svc.ListByRole(ctx, models.RoleDelivery)
	require.NoError(t, err)
	require.Len(t, riders, 1)
	assert.Equal(t, rider.ID, riders[0].ID)

	everyone, err := svc.ListByRole(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	_, err = svc.ListByRole(ctx, "chef")
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := svc.Get(ctx, rider.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rafi", got.Name)
	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpass"))

	admins, err := svc.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	user, _, err := svc.Authenticate(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestEnsureAdminRejectsEmailHeldByCustomer(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Squatter", "boss@example.com", "secret123")
	require.NoError(t, err)

	err = svc.EnsureAdmin(ctx, "Boss@Example.com", "rootpass")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Contains(t, err.Error(), "customer")

	admins, err := svc.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}
