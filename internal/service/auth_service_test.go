package service

import (
	"context"
	"testing"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newAuthFixture(t *testing.T) (*authService, *stubUserRepo, *model.User) {
	t.Helper()
	users := newStubUserRepo()
	u := users.seed("Lia Login", authz.RoleManager)
	hash, err := bcrypt.GenerateFromPassword([]byte("pa55word"), bcrypt.MinCost)
	require.NoError(t, err)
	users.users[u.ID].PasswordHash = string(hash)

	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
	svc := NewAuthService(users, cfg).(*authService)
	return svc, users, u
}

func parseClaims(t *testing.T, token string) *authz.Claims {
	t.Helper()
	claims := &authz.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestLogin_Success(t *testing.T) {
	svc, users, u := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: u.Email, Password: "pa55word"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, u.ID, resp.Data.ID)
	assert.NotNil(t, users.users[u.ID].LastLogin)

	access := parseClaims(t, resp.Token)
	assert.Equal(t, authz.TokenAccess, access.TokenType)
	assert.Equal(t, u.ID, access.UserID)
	assert.Equal(t, authz.RoleManager, access.Role)
	assert.Equal(t, authz.TokenRefresh, parseClaims(t, resp.RefreshToken).TokenType)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, u := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Email: u.Email, Password: "wrong"})
	assert.True(t, apierror.Is(err, apierror.KindUnauthenticated))
	assert.EqualError(t, err, "Invalid credentials")

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@plant.io", Password: "pa55word"})
	assert.EqualError(t, err, "Invalid credentials")
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, users, u := newAuthFixture(t)
	users.users[u.ID].Status = model.UserStatusSuspended

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: u.Email, Password: "pa55word"})
	assert.True(t, apierror.Is(err, apierror.KindUnauthenticated))
	assert.EqualError(t, err, "Account is Suspended")
}

func TestRefresh(t *testing.T) {
	svc, _, u := newAuthFixture(t)
	ctx := context.Background()
	login, err := svc.Login(ctx, dto.LoginRequest{Email: u.Email, Password: "pa55word"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, authz.TokenAccess, parseClaims(t, resp.Token).TokenType)

	_, err = svc.Refresh(ctx, login.Token)
	assert.EqualError(t, err, "Invalid or expired refresh token", "access tokens cannot refresh")

	_, err = svc.Refresh(ctx, "garbage")
	assert.True(t, apierror.Is(err, apierror.KindUnauthenticated))
}

func TestRefresh_Expired(t *testing.T) {
	svc, _, u := newAuthFixture(t)
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: u.Email, Password: "pa55word"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.EqualError(t, err, "Invalid or expired refresh token")
}

func TestMe(t *testing.T) {
	svc, _, u := newAuthFixture(t)

	resp, err := svc.Me(context.Background(), callerOf(u))
	require.NoError(t, err)
	assert.Equal(t, u.Email, resp.Email)

	_, err = svc.Me(context.Background(), authz.Caller{ID: 999})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}
