// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type AuthService struct {
	admins AdminRepository
	cfg    *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Admin        *models.AdminUser `json:"admin"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int               `json:"expires_in"` // in seconds
}

func NewAuthService(admins AdminRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		admins: admins,
		cfg:    cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}

	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &errs.RepositoryError{Op: "find admin", Err: err}
	}

	if err := admin.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !admin.Active {
		return nil, ErrAccountDisabled
	}

	if err := s.admins.TouchLastLogin(ctx, admin.ID); err != nil {
		logrus.WithError(err).WithField("admin_id", admin.ID).Warn("Failed to update last login")
	}

	return s.issueTokens(admin)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	adminIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	adminID, err := uuid.Parse(adminIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid admin ID in token: %w", err)
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &errs.RepositoryError{Op: "find admin", Err: err}
	}
	if !admin.Active {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(admin)
}

func (s *AuthService) issueTokens(admin *models.AdminUser) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(admin.ID, admin.Email, admin.Name, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(admin.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		Admin:        admin,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

func (s *AuthService) GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	return s.admins.GetByID(ctx, id)
}

// SeedAdmin creates the configured initial admin if no admin with that email
// exists. It does nothing when no admin is configured.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.Admin.Email))
	if email == "" {
		return nil
	}

	_, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return &errs.RepositoryError{Op: "find admin", Err: err}
	}

	admin := &models.AdminUser{Email: email, Name: s.cfg.Admin.Name, Active: true}
	if err := admin.SetPassword(s.cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return err
	}

	logrus.WithField("email", email).Info("Seeded admin user")
	return nil
}
