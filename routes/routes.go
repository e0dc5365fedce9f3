package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fruncoy/traiq-sub000/controllers/taskers"
	"github.com/fruncoy/traiq-sub000/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "traiq-api",
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS middleware - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"https://traiq.app", "https://admin.traiq.app",
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		parts := strings.Split(originsEnv, ",")
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-CRON-KEY", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Cron limiter: 1000/hour per IP
	cronLimiter := middleware.NewIPRateLimiter(1000, time.Hour)
	// Webhook limiter: 500/ip, whitelist, sliding window
	webhookLimiter := middleware.NewWebhookLimiter(500, time.Hour, []string{"127.0.0.1"})

	// Cron endpoints (protected via X-CRON-KEY header)
	api.Handle("/cron/expire-tasks", cronLimiter.Middleware(http.HandlerFunc(taskers.CronExpireTasksHandler))).Methods(http.MethodPost)
	api.Handle("/cron/notify-pending", cronLimiter.Middleware(http.HandlerFunc(taskers.CronDeadlineRemindersHandler))).Methods(http.MethodPost)

	// Payment gateway webhook
	api.Handle("/callback/payments", webhookLimiter.Middleware(http.HandlerFunc(taskers.PaymentWebhookHandler))).Methods(http.MethodPost)

	// Example protected endpoint using JWT middleware
	api.Handle("/ping", middleware.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "pong",
		})
	}))).Methods(http.MethodGet)

	// Health check under the API prefix
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	TaskersRoutes(api)
	SetAdminRoutes(api)

	return r
}
