package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/security"
	"vehicle-rental-desk/internal/service"

	"github.com/gorilla/mux"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFrom returns the authenticated caller stored by the auth middleware.
func ClaimsFrom(ctx context.Context) (*security.UserClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*security.UserClaims)
	return c, ok
}

func isAdmin(c *security.UserClaims) bool {
	return c != nil && c.Role == string(domain.RoleAdmin)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// AuthMiddleware enforces the security level configured for the matched route.
func AuthMiddleware(tokens security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			level := config.GetSecurityLevel(r.Method, routeTemplate(r))
			if level == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				writeError(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if level == config.SecurityAdmin && !isAdmin(claims) {
				writeError(w, http.StatusForbidden, "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// statusRecorder captures the HTTP status code for logs and metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// ObservabilityMiddleware logs every request and records it in the metrics registry.
// Panics are turned into a 500 response.
func ObservabilityMiddleware(metrics *service.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			path := routeTemplate(r)

			defer func() {
				if p := recover(); p != nil {
					logger.Error("Handler panicked", "method", r.Method, "path", path, "panic", p)
					rw.code = http.StatusInternalServerError
					writeError(rw, http.StatusInternalServerError, "internal error")
				}
				elapsed := time.Since(start)
				metrics.ObserveRequest(r.Method, path, rw.code, elapsed)
				logger.Debug("HTTP request", "method", r.Method, "path", path, "status", rw.code, "duration", elapsed)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
