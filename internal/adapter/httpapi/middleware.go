package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ContextKey is a private key type for request context values, avoiding
// collisions with other packages.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user's ID in the request context.
	UserIDCtxKey = ContextKey("user_id")
	// UserRoleCtxKey holds the authenticated user's role in the request context.
	UserRoleCtxKey = ContextKey("user_role")
)

// Claims defines the expected JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and stores the user's identity in the
// request context.
func JWTAuth(jwtSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	authLogger := log.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authLogger.Warn("Missing Authorization header", zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				authLogger.Warn("Malformed Authorization header", zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized: malformed token", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				authLogger.Warn("Invalid JWT token", zap.Error(err), zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			if claims.UserID == "" {
				authLogger.Warn("JWT token has no user_id claim", zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized: invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	reqLogger := log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			reqLogger.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Metrics records per-route latency and error counts. The route label uses
// chi's route pattern, not the raw path, so path parameters do not blow up
// the label cardinality.
func Metrics(m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			// The pattern is only known after routing has run.
			pattern := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if p := routeCtx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			route := r.Method + " " + pattern
			m.APILatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			if rec.status >= 400 {
				errorType := "client"
				if rec.status >= 500 {
					errorType = "server"
				}
				m.APIErrorsTotal.WithLabelValues(route, errorType).Inc()
			}
		})
	}
}

// userIDFromContext extracts the authenticated user ID placed by JWTAuth.
func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}
