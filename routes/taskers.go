package routes

import (
	"net/http"
	"time"

	"github.com/fruncoy/traiq-sub000/controllers/auth"
	"github.com/fruncoy/traiq-sub000/controllers/taskers"
	"github.com/fruncoy/traiq-sub000/middleware"

	"github.com/gorilla/mux"
)

// TaskersRoutes registers all tasker-facing routes on the given subrouter.
func TaskersRoutes(api *mux.Router) {
	// Login/register limiter: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Session limiter: 120 reads / 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Account info
	api.Handle("/taskers/info", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.InfoHandler)))).Methods(http.MethodGet)

	// Task browsing and bidding
	api.Handle("/taskers/tasks", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.TaskListHandler)))).Methods(http.MethodGet)
	api.Handle("/taskers/tasks/{id:[0-9]+}/bid", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.PlaceBidHandler)))).Methods(http.MethodPost)
	api.Handle("/taskers/tasks/{id:[0-9]+}/submission", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.UploadSubmissionHandler)))).Methods(http.MethodPost)
	api.Handle("/taskers/bids", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.MyBidsHandler)))).Methods(http.MethodGet)

	// Bid balance purchases
	api.Handle("/taskers/bids/packages", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.ListPackagesHandler)))).Methods(http.MethodGet)
	api.Handle("/taskers/bids/purchase", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.PurchaseBidsHandler)))).Methods(http.MethodPost)

	// Notifications
	api.Handle("/taskers/notifications", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.NotificationListHandler)))).Methods(http.MethodGet)
	api.Handle("/taskers/notifications/read", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.MarkNotificationsReadHandler)))).Methods(http.MethodPost)

	// Support tickets
	api.Handle("/taskers/tickets", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.CreateTicketHandler)))).Methods(http.MethodPost)
	api.Handle("/taskers/tickets", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.TicketListHandler)))).Methods(http.MethodGet)
	api.Handle("/taskers/tickets/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.TicketDetailHandler)))).Methods(http.MethodGet)
	api.Handle("/taskers/tickets/{id:[0-9]+}/replies", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskers.TicketReplyHandler)))).Methods(http.MethodPost)
}
