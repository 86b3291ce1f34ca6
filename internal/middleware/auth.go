package middleware

import (
	"strings"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const CallerKey = "caller"

const msgNotAuthorized = "Not authorized to access this route"

// JWTAuth validates the Bearer access token on every protected route and
// stores the resolved authz.Caller in the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abort(c, apierror.Unauthenticated(msgNotAuthorized))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &authz.Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.TokenType != authz.TokenAccess || claims.UserID == 0 {
			abort(c, apierror.Unauthenticated(msgNotAuthorized))
			return
		}

		c.Set(CallerKey, claims.Caller())
		c.Next()
	}
}

// Authorize rejects requests whose caller may not perform action. Ownership
// rules that depend on the target record are checked by the service.
func Authorize(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Allow(GetCaller(c), action); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

// GetCaller returns the authenticated caller, or nil on public routes.
func GetCaller(c *gin.Context) *authz.Caller {
	v, ok := c.Get(CallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*authz.Caller)
	return caller
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
