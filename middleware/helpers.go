package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Имена JWT claims
const (
	jwtClaimUserID  = "user_id"
	jwtClaimSubject = "sub"
	jwtClaimRole    = "role"
)

var ErrNoUserInContext = errors.New("user claims not found in context")

// GetUserIDFromContext возвращает UUID пользователя из claim user_id (или sub).
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}

	var raw interface{}
	for _, name := range []string{jwtClaimUserID, jwtClaimSubject} {
		if v, ok := claims[name]; ok {
			raw = v
			break
		}
	}
	if raw == nil {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimUserID, raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid user ID in '%s' claim: %w", jwtClaimUserID, err)
	}
	return id.String(), nil
}

// UserIDOrAnonymous возвращает пустую строку для анонимного запроса.
func UserIDOrAnonymous(ctx context.Context) string {
	id, err := GetUserIDFromContext(ctx)
	if err != nil {
		return ""
	}
	return id
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return models.RoleUser, nil
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}
