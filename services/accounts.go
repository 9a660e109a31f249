package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodiehub-api/auth"
	"foodiehub-api/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// AccountService is the user directory: registration, login and role lookups.
type AccountService struct {
	db     *gorm.DB
	tokens *auth.Issuer
	log    *logrus.Entry
	cost   int
}

func NewAccountService(db *gorm.DB, tokens *auth.Issuer, log *logrus.Logger) *AccountService {
	return &AccountService{
		db:     db,
		tokens: tokens,
		log:    log.WithField("component", "accounts"),
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates a customer account and returns it with a fresh token.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	user, err := s.create(ctx, name, email, password, models.RoleCustomer)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// CreateStaff lets an admin create an account with any role.
func (s *AccountService) CreateStaff(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be customer, admin or delivery", models.ErrValidation)
	}
	return s.create(ctx, name, email, password, role)
}

// EnsureAdmin creates the bootstrap admin. An existing account with the email
// is accepted only if it already holds the admin role.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.create(ctx, "Administrator", email, password, models.RoleAdmin)
	if !errors.Is(err, models.ErrConflict) {
		return err
	}
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&existing).Error; err != nil {
		return fmt.Errorf("find bootstrap admin: %w", err)
	}
	if existing.Role != models.RoleAdmin {
		return fmt.Errorf("%w: %s is registered with role %s, not admin", models.ErrConflict, existing.Email, existing.Role)
	}
	return nil
}

func (s *AccountService) create(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", models.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLen)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: email already registered", models.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("account created")
	return &user, nil
}

// Authenticate checks credentials and issues a token.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: invalid email or password", models.ErrUnauthenticated)
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", models.ErrUnauthenticated)
	}
	token, err := s.tokens.GenerateToken(&user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return &user, token, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// ListByRole returns users holding role, or every user when role is empty.
func (s *AccountService) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users := []models.User{}
	q := s.db.WithContext(ctx).Order("id asc")
	if role != "" {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
		}
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
