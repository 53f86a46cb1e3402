package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
)

type contextKey string

const (
	AdvisorIDKey contextKey = "advisorId"
	StudentIDKey contextKey = "studentId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdvisor validates advisor JWT from Authorization header
func (m *AuthMiddleware) RequireAdvisor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAdvisorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AdvisorIDKey, claims.AdvisorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStudent validates student JWT from Authorization header or query param
func (m *AuthMiddleware) RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// shared progress links carry the token in the query
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateStudentToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), StudentIDKey, claims.StudentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdvisorID extracts advisor ID from context
func GetAdvisorID(ctx context.Context) string {
	if v, ok := ctx.Value(AdvisorIDKey).(string); ok {
		return v
	}
	return ""
}

// GetStudentID extracts student ID from context
func GetStudentID(ctx context.Context) string {
	if v, ok := ctx.Value(StudentIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
