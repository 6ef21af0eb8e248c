package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const (
	userIDKey  contextKey = "userID"
	adminIDKey contextKey = "adminID"

	// HeaderUserID заголовок с ID пользователя (проставляется API gateway)
	HeaderUserID = "X-User-ID"
	// HeaderAdminID заголовок с ID администратора
	HeaderAdminID = "X-Admin-ID"
)

// Auth проверяет наличие X-User-ID и кладет его в контекст запроса
// Аутентификация выполняется на API gateway, сервис доверяет заголовку
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "missing or invalid "+HeaderUserID+" header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminAuth проверяет наличие X-Admin-ID и кладет его в контекст запроса
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := strconv.ParseInt(r.Header.Get(HeaderAdminID), 10, 64)
		if err != nil || adminID <= 0 {
			http.Error(w, "missing or invalid "+HeaderAdminID+" header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetAdminID извлекает ID администратора из контекста
func GetAdminID(ctx context.Context) (int64, bool) {
	adminID, ok := ctx.Value(adminIDKey).(int64)
	return adminID, ok
}
