package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"optivus-service/pkg/common"
)

const (
	// ScopeSession is a fully authenticated session token.
	ScopeSession = "session"
	// ScopePending2FA is issued after a correct password when the account
	// still has to present a TOTP code. It grants nothing but the verify
	// endpoint.
	ScopePending2FA = "pending_2fa"
)

type Claims struct {
	AccountID int    `json:"accountId"`
	Role      string `json:"role"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateToken(accountId int, role, scope, secret string, expiry time.Duration) (string, error) {
	claims := Claims{
		AccountID: accountId,
		Role:      role,
		Scope:     scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// JwtAuthMiddleware rejects requests without a valid session token and
// stores the claims on the context for handlers.
func JwtAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, secret)
		if !ok {
			return
		}
		if claims.Scope != ScopeSession {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Two-factor verification required", nil, http.StatusUnauthorized))
			c.Abort()
			return
		}
		c.Set("accountId", claims.AccountID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// PendingAuthMiddleware accepts only the short-lived pending token handed
// out between password and TOTP verification.
func PendingAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, secret)
		if !ok {
			return
		}
		if claims.Scope != ScopePending2FA {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid token scope", nil, http.StatusUnauthorized))
			c.Abort()
			return
		}
		c.Set("accountId", claims.AccountID)
		c.Next()
	}
}

// RequireRole restricts a route group to the given roles. Runs after
// JwtAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, common.NewErrorResponse("Insufficient permissions", nil, http.StatusForbidden))
		c.Abort()
	}
}

func claimsFromRequest(c *gin.Context, secret string) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Authorization header is missing", nil, http.StatusUnauthorized))
		c.Abort()
		return nil, false
	}
	claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid or expired token", nil, http.StatusUnauthorized))
		c.Abort()
		return nil, false
	}
	return claims, true
}
