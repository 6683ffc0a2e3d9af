package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountDisabled    = errors.New("Account is disabled")
)

type AuthService struct {
	store    store.Store
	cfg      *config.Config
	notifier Notifier
}

func NewAuthService(st store.Store, cfg *config.Config, notifier Notifier) *AuthService {
	return &AuthService{store: st, cfg: cfg, notifier: notifier}
}

func (s *AuthService) Register(tenantID string, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && !models.IsStaffRole(role) {
		return nil, errors.New("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		TenantID:     tenantID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
	}

	if err := s.store.CreateUser(&user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(tenantID, &user)
}

// Login verifies credentials. Unknown email and wrong password both map to
// ErrInvalidCredentials so the response never reveals whether the email exists.
func (s *AuthService) Login(tenantID string, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(tenantID, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	if err := s.store.UpdateUser(tenantID, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		slog.Error("failed to record last login", "error", err, "tenant_id", tenantID)
	}

	return s.buildAuthResponse(tenantID, user)
}

// ForgotPassword always succeeds from the caller's view; the reset mail is
// sent best-effort only when the account exists.
func (s *AuthService) ForgotPassword(tenantID, email string) {
	user, err := s.store.GetUserByEmail(tenantID, email)
	if err != nil {
		return
	}

	resetToken, err := s.issueToken(tenantID, user, time.Hour, "password_reset")
	if err != nil {
		slog.Error("failed to issue reset token", "error", err, "tenant_id", tenantID)
		return
	}
	s.notifier.SendPasswordReset(user.Email, resetToken)
}

// IssueToken produces the signed access token embedding user id, email, role
// and tenant id.
func (s *AuthService) IssueToken(tenantID string, user *models.User) (string, error) {
	return s.issueToken(tenantID, user, s.cfg.JWTExpiry, "")
}

func (s *AuthService) issueToken(tenantID string, user *models.User, expiry time.Duration, purpose string) (string, error) {
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"role":      user.Role,
		"tenant_id": tenantID,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(expiry).Unix(),
	}
	if purpose != "" {
		claims["purpose"] = purpose
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) buildAuthResponse(tenantID string, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.IssueToken(tenantID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}, nil
}
