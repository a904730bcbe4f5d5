package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/common"
)

const userIDKey = "user_id"

// Claims represents JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Auth validates the Bearer token and stores the authenticated user id in the
// gin context. All mutating routes sit behind this middleware; requests
// without a valid identity are rejected.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, jwtSecret)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// OptionalAuth stores the user id when a valid token is present but lets
// anonymous requests through. Used on the public search endpoint so search
// logging can attribute searches to users when possible.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseToken(c, jwtSecret); ok {
			c.Set(userIDKey, claims.UserID)
			c.Set("user_email", claims.Email)
		}
		c.Next()
	}
}

func parseToken(c *gin.Context, jwtSecret string) (*Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}

	return claims, true
}

// GetUserID extracts the authenticated user id from the gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, common.ErrUnauthorized
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, common.ErrUnauthorized
	}

	return userID, nil
}
