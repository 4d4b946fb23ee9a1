package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

const accessTokenParam = "access_token"

var (
	ErrMissingToken = errors.New("authorization token is missing")
	ErrInvalidToken = errors.New("authorization token is invalid")
)

// Authenticate требует валидный Bearer-токен (HS256) и кладёт claims в контекст.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, true, false)
}

// OptionalAuthenticate пропускает запросы без токена анонимно,
// но отклоняет запросы с невалидным токеном.
func OptionalAuthenticate(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, false, false)
}

// OptionalAuthenticateWebSocket как OptionalAuthenticate, но дополнительно принимает
// токен из ?access_token=: браузерный WebSocket не передаёт заголовки.
func OptionalAuthenticateWebSocket(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, false, true)
}

func authenticate(jwtSecret string, required, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if errors.Is(err, ErrMissingToken) && allowQuery {
				if q := strings.TrimSpace(r.URL.Query().Get(accessTokenParam)); q != "" {
					raw, err = q, nil
				}
			}
			if errors.Is(err, ErrMissingToken) && !required {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err)
				return
			}

			claims, err := ParseToken(jwtSecret, raw)
			if err != nil {
				slog.Debug("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				writeAuthError(w, http.StatusUnauthorized, ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только пользователей с одной из ролей. Ставится после Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				writeAuthError(w, http.StatusForbidden, err)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, errors.New("insufficient permissions"))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// ParseToken проверяет подпись HS256 и срок действия.
func ParseToken(jwtSecret, raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueToken подписывает токен для пользователя. Используется в тестах и локальной разработке.
func IssueToken(jwtSecret, userID string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		"sub":          userID,
		jwtClaimRole:   string(role),
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
}
