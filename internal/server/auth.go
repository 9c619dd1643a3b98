package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDClaim    = "user_id"
	callerIDCtxKey = "callerID"
)

// IssueToken signs an HS256 token for userID that expires after ttl.
func IssueToken(secret string, userID int, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: пустой секрет", errors.ErrUnauthorized)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIDClaim: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns the user id it was issued for.
func ParseToken(secret, tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.ErrUnauthorized
	}
	raw, ok := claims[userIDClaim].(float64)
	if !ok || raw != float64(int(raw)) || raw < 1 {
		return 0, fmt.Errorf("%w: некорректный %s", errors.ErrUnauthorized, userIDClaim)
	}
	return int(raw), nil
}

// RequireBearer rejects requests without a valid bearer token and stores the
// caller's id in the gin context.
func RequireBearer(secret string, catalog *messages.Catalog) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(catalog.Format(messages.AuthenticationRequired)))
			return
		}

		userID, err := ParseToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			log.Println("[WARN] Отклонён токен:", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(catalog.Format(messages.AuthenticationRequired)))
			return
		}

		ctx.Set(callerIDCtxKey, userID)
		ctx.Next()
	}
}

// callerID returns the authenticated user, if authentication is enabled.
func callerID(ctx *gin.Context) (int, bool) {
	v, ok := ctx.Get(callerIDCtxKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
