package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/hash"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/tokens"
)

const minPasswordLength = 8

type AuthService struct {
	Repo      *repo.AdminRepo
	JWTSecret []byte

	now func() time.Time
}

func NewAuthService(admins *repo.AdminRepo, jwtSecret []byte) *AuthService {
	return &AuthService{Repo: admins, JWTSecret: jwtSecret, now: time.Now}
}

type LoginResult struct {
	Token string
	Exp   time.Time
	Admin *models.Admin
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", domain.ErrValidation)
	}

	admin, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	exp := s.now().Add(tokens.SessionTTL)
	token, err := tokens.CreateSessionToken(strconv.FormatUint(uint64(admin.ID), 10), admin.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}

	loginAt := s.now()
	if err := s.Repo.UpdateLastLogin(ctx, admin.ID, loginAt); err != nil {
		l.Warn("last_login_update_failed", "error", err)
	} else {
		admin.LastLogin = &loginAt
	}

	l.Info("login_success", "admin", admin.Email)
	return &LoginResult{Token: token, Exp: exp, Admin: admin}, nil
}

func (s *AuthService) Verify(ctx context.Context, tokenStr string) (*tokens.SessionClaims, error) {
	claims, err := tokens.SessionClaimsFromToken(tokenStr, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, adminID uint, current, updated string) error {
	if len(updated) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	admin, err := s.Repo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(admin.PasswordHash, current) {
		return fmt.Errorf("%w: wrong current password", domain.ErrUnauthorized)
	}

	newHash, err := hash.HashPassword(updated)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, adminID, newHash)
}
