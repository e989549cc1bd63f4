package rest

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"

	"freakmeet/internal/service"
	"freakmeet/internal/transport/rest/handler"
	"freakmeet/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	RoomService *service.RoomService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.RoomService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{pin}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{pin}/exists", roomHandler.Exists).Methods("GET", "OPTIONS")

	// Vote route, rate limited per client IP
	voteRoutes := v1.NewRoute().Subrouter()
	voteRoutes.Use(httprate.LimitByIP(60, time.Minute))
	voteRoutes.HandleFunc("/rooms/{pin}/slots/{slotId}/vote", roomHandler.Vote).Methods("POST", "OPTIONS")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)
	adminRoutes.HandleFunc("/rooms", roomHandler.ClearAll).Methods("DELETE", "OPTIONS")

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
			allowedMethods = "GET, POST, DELETE, OPTIONS"
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
