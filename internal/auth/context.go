// internal/auth/context.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/VitaminP8/discuss/internal/model"
)

type contextKey string

const actorKey = contextKey("actor")

var ErrNoActor = errors.New("user ID not found in context")

// Сохраняет пользователя в контексте
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Сохраняет userID в контексте
func WithUserID(ctx context.Context, userID, name string) context.Context {
	return WithActor(ctx, model.Actor{ID: userID, Name: name, Authenticated: userID != ""})
}

// Достает userID из контекста
func GetUserIDFromContext(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	if !ok || actor.ID == "" {
		return "", ErrNoActor
	}
	return actor.ID, nil
}

// ActorFromContext - пользователь запроса или model.Anonymous
func ActorFromContext(ctx context.Context) model.Actor {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	if !ok {
		return model.Anonymous
	}
	return actor
}

// Identity реализует discussion.Identity поверх контекста запроса
type Identity struct{}

func (Identity) CurrentActor(ctx context.Context) model.Actor {
	return ActorFromContext(ctx)
}

// Middleware достает пользователя из JWT и кладет его в context запроса.
// Запрос без токена или с невалидным токеном проходит как анонимный.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenStr == "" || secret == "" {
			c.Next()
			return
		}

		actor, err := ParseToken(secret, tokenStr)
		if err != nil {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ParseToken проверяет подпись и срок действия и возвращает пользователя из claims
func ParseToken(secret, tokenStr string) (model.Actor, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return model.Anonymous, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Anonymous, errors.New("unexpected claims type")
	}

	var userID string
	switch v := claims["user_id"].(type) {
	case string:
		userID = v
	case float64:
		// токены старого формата с числовым ID
		userID = strconv.FormatUint(uint64(v), 10)
	}
	if userID == "" {
		return model.Anonymous, errors.New("user_id claim is missing")
	}
	name, _ := claims["name"].(string)

	return model.Actor{ID: userID, Name: name, Authenticated: true}, nil
}

// IssueToken подписывает токен HS256 для пользователя
func IssueToken(secret, userID, name string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"name":    name,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
