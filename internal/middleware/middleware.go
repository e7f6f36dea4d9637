package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"imagetinder/internal/config"
	handlers "imagetinder/internal/handler"
	"imagetinder/internal/service"
)

type Middleware func(http.Handler) http.Handler

// Chain применяет middleware в обратном порядке, чтобы первый в списке
// выполнялся первым
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// AuthMiddleware verifies the JWT token and adds user data to the context
func AuthMiddleware(cfg *config.Config, authService service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skipping public endpoints
			publicPaths := []string{
				"/api/auth/register",
				"/api/auth/login",
				"/api/auth/refresh-token",
				"/health",
				"/",
			}

			for _, path := range publicPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Extracting the token from the header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handlers.WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
				return
			}

			// Checking the "Bearer <token>" format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				handlers.WriteError(w, "Неверный формат токена", http.StatusUnauthorized)
				return
			}

			token, err := authService.ValidateToken(parts[1])
			if err != nil || !token.Valid {
				handlers.WriteError(w, "Недействительный токен", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				handlers.WriteError(w, "Неверные claims токена", http.StatusUnauthorized)
				return
			}

			// JSON-числа декодируются как float64
			userID, ok1 := claims["userId"].(float64)
			email, ok2 := claims["email"].(string)
			createCollection, _ := claims["createCollection"].(bool)

			if !ok1 || !ok2 {
				handlers.WriteError(w, "Неверные данные в токене", http.StatusUnauthorized)
				return
			}

			// Adding user data to the context
			ctx := r.Context()
			ctx = context.WithValue(ctx, "userID", int64(userID))
			ctx = context.WithValue(ctx, "email", email)
			ctx = context.WithValue(ctx, "createCollection", createCollection)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s за %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
