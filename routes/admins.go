package routes

import (
	"net/http"
	"time"

	"github.com/fruncoy/traiq-sub000/controllers/admins"
	"github.com/fruncoy/traiq-sub000/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	// Admin profile
	adminRouter.Handle("/profile", http.HandlerFunc(admins.GetAdminProfile)).Methods(http.MethodGet)
	adminRouter.Handle("/profile", http.HandlerFunc(admins.UpdateAdminProfile)).Methods(http.MethodPut)
	adminRouter.Handle("/password", http.HandlerFunc(admins.UpdateAdminPassword)).Methods(http.MethodPut)

	// Tasker management
	adminRouter.Handle("/taskers", http.HandlerFunc(admins.TaskerListHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/taskers/{id:[0-9]+}", http.HandlerFunc(admins.TaskerDetailHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/taskers/{id:[0-9]+}/suspend", http.HandlerFunc(admins.SuspendTaskerHandler)).Methods(http.MethodPut)
	adminRouter.Handle("/taskers/{id:[0-9]+}/unsuspend", http.HandlerFunc(admins.UnsuspendTaskerHandler)).Methods(http.MethodPut)
	adminRouter.Handle("/taskers/{id:[0-9]+}/bids", http.HandlerFunc(admins.AdjustTaskerBidsHandler)).Methods(http.MethodPut)

	// Task management
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.TaskListHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.CreateTaskHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/upload", http.HandlerFunc(admins.UploadTasksHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}/status", http.HandlerFunc(admins.ToggleTaskStatusHandler)).Methods(http.MethodPut)
	adminRouter.Handle("/tasks/{id:[0-9]+}/bidders", http.HandlerFunc(admins.TaskBiddersHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(admins.DeleteTaskHandler)).Methods(http.MethodDelete)

	// Submission review
	adminRouter.Handle("/submissions", http.HandlerFunc(admins.SubmissionListHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/submissions/{id:[0-9]+}", http.HandlerFunc(admins.ReviewSubmissionHandler)).Methods(http.MethodPut)

	// Purchase history
	adminRouter.Handle("/transactions", http.HandlerFunc(admins.TransactionListHandler)).Methods(http.MethodGet)

	// Support tickets
	adminRouter.Handle("/tickets", http.HandlerFunc(admins.TicketListHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/tickets/{id:[0-9]+}/replies", http.HandlerFunc(admins.TicketReplyHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/tickets/{id:[0-9]+}/close", http.HandlerFunc(admins.CloseTicketHandler)).Methods(http.MethodPut)

	// Platform settings
	adminRouter.Handle("/settings", http.HandlerFunc(admins.GetSettingsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(admins.UpdateSettingsHandler)).Methods(http.MethodPut)

	// Full platform reset
	adminRouter.Handle("/system/reset", http.HandlerFunc(admins.ResetPlatformHandler)).Methods(http.MethodPost)
}
