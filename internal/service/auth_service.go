package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgInvalidCredentials = "Invalid credentials"

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, caller authz.Caller) (*dto.UserResponse, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Unauthenticated(msgInvalidCredentials)
	}
	if user.Status != model.UserStatusActive {
		return nil, apierror.Unauthenticated("Account is " + user.Status)
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("auth: failed to record last login")
	} else {
		user.LastLogin = &now
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims := &authz.Claims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.TokenType != authz.TokenRefresh {
		return nil, apierror.Unauthenticated("Invalid or expired refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Unauthenticated("User not found")
	}
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserStatusActive {
		return nil, apierror.Unauthenticated("Account is " + user.Status)
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, caller authz.Caller) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	resp := dto.MapUser(user)
	return &resp, nil
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, authz.TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, authz.TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Success:      true,
		Token:        access,
		RefreshToken: refresh,
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Data:         dto.MapUser(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, typ string, duration time.Duration) (string, error) {
	now := s.now()
	claims := authz.Claims{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      authz.Role(user.Role),
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
