package authz

import "github.com/golang-jwt/jwt/v5"

// Token types carried in the typ claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims are the custom claims embedded in every token we issue.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Caller() *Caller {
	return &Caller{ID: c.UserID, Name: c.Name, Role: c.Role}
}
