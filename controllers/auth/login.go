package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/middleware"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,emailok"`
	Password string `json:"password" validate:"required,pwdmin"`
	IsApp    *bool  `json:"is_app,omitempty"` // Optional: if true, token expires in 30 days
}

// POST /v1/login
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check maintenance mode
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The platform is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	db := database.DB

	var tasker models.Tasker
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&tasker).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Incorrect email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if tasker.IsSuspended {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account has been suspended, please contact support"})
		return
	}

	// check account lockout
	if locked, retry := middleware.IsAccountLocked(tasker.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many login attempts. Try again later.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tasker.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(tasker.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Incorrect email or password"})
		return
	}

	middleware.ResetFailedLogin(tasker.ID)

	// Longer expiry for the mobile app wrapper
	var tokenExpiry time.Duration
	isApp := req.IsApp != nil && *req.IsApp
	if isApp {
		tokenExpiry = 30 * 24 * time.Hour
	} else {
		tokenExpiry = 15 * time.Minute
	}
	exp := time.Now().Add(tokenExpiry)

	accessToken, err := utils.GenerateAccessTokenWithExpiry(tasker.ID, "tasker", tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Login failed"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(tasker.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	var unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND `read` = ?", tasker.ID, false).Count(&unread)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"tasker": map[string]interface{}{
				"id":              tasker.ID,
				"name":            tasker.Name,
				"email":           tasker.Email,
				"bids":            tasker.Bids,
				"tasks_completed": tasker.TasksCompleted,
				"total_payouts":   tasker.TotalPayouts,
				"pending_payouts": tasker.PendingPayouts,
			},
			"unread_notifications": unread,
			"access_token":         accessToken,
			"access_expire":        exp.UTC().Format(time.RFC3339),
			"refresh_token":        refreshJTI,
		},
	})
}
