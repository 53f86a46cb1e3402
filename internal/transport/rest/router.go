package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/metrics"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/rest/handler"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/rest/middleware"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	ProgramService  *service.ProgramService
	ProgressService *service.ProgressService
	Metrics         *metrics.Metrics
	WSHub           *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	programHandler := handler.NewProgramHandler(c.ProgramService)
	progressHandler := handler.NewProgressHandler(c.ProgressService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/preview/evaluate", progressHandler.Preview).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.ProgramService)
		v1.HandleFunc("/ws/programs/{id}", wsHandler.ProgramWS).Methods("GET")
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	// Student routes (require student auth)
	studentRoutes := v1.NewRoute().Subrouter()
	studentRoutes.Use(authMW.RequireStudent)

	studentRoutes.HandleFunc("/programs/{id}/progress", progressHandler.MyProgress).Methods("GET", "OPTIONS")
	studentRoutes.HandleFunc("/programs/{id}/audit", progressHandler.MyAudit).Methods("GET", "OPTIONS")

	// Advisor routes (require advisor auth)
	advisorRoutes := v1.NewRoute().Subrouter()
	advisorRoutes.Use(authMW.RequireAdvisor)

	advisorRoutes.HandleFunc("/programs", programHandler.List).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/programs", programHandler.Create).Methods("POST", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}", programHandler.Get).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}", programHandler.Delete).Methods("DELETE", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/draft", programHandler.Draft).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/draft", programHandler.DiscardDraft).Methods("DELETE", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/edits", programHandler.ApplyEdits).Methods("POST", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/catalog-courses", programHandler.AddCatalogCourse).Methods("POST", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/publish", programHandler.Publish).Methods("POST", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/validation", programHandler.Validation).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/course-slots", programHandler.CourseSlots).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/programs/{id}/snapshots", programHandler.Snapshots).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/catalog/courses", programHandler.SearchCatalog).Methods("GET", "OPTIONS")

	advisorRoutes.HandleFunc("/students/{studentId}/token", authHandler.StudentToken).Methods("POST", "OPTIONS")
	advisorRoutes.HandleFunc("/students/{studentId}/transcript", progressHandler.GetTranscript).Methods("GET", "OPTIONS")
	advisorRoutes.HandleFunc("/students/{studentId}/transcript", progressHandler.PutTranscript).Methods("PUT", "OPTIONS")
	advisorRoutes.HandleFunc("/students/{studentId}/programs/{id}/progress", progressHandler.StudentProgress).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
