package middleware

import (
	"errors"
	"net/http"
	"strings"

	"adaptive-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Auth resolves the calling user. The gateway normally forwards the identity
// in X-User-ID; direct callers can present a bearer token instead. The
// resolved id is stored in the gin context under "user_id".
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			var err error
			userID, err = userIDFromToken(c.GetHeader("Authorization"))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Authentication required",
					"code":  "INVALID_TOKEN",
				})
				c.Abort()
				return
			}
		}
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func userIDFromToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.UserID, nil
}
