package auth

import (
	"errors"
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

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,nameok"`
	Email                string `json:"email" validate:"required,emailok"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone"`
}

// POST /v1/register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Registration can be closed platform-wide
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("closed_register, name").Take(&appSetting).Error; err == nil && appSetting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Registration is currently closed. Please try again later.",
			Data:    map[string]interface{}{"closed_register": true, "application": appSetting.Name},
		})
		return
	}

	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The platform is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	db := database.DB

	var existing models.Tasker
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	tasker := models.Tasker{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}
	if req.Phone != "" {
		tasker.Phone = &req.Phone
	}
	if err := db.Create(&tasker).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create account"})
		return
	}

	// Welcome notification
	db.Create(&models.Notification{
		UserID:  tasker.ID,
		Title:   "Welcome to TRAIQ",
		Message: "Your account is ready. Purchase bids to start claiming tasks.",
		Type:    models.NotificationSystem,
	})

	tokenExpiry := 15 * time.Minute
	accessToken, err := utils.GenerateAccessTokenWithExpiry(tasker.ID, "tasker", tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Account created, please log in"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(tasker.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Account created, please log in"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Account created",
		Data: map[string]interface{}{
			"tasker": map[string]interface{}{
				"id":    tasker.ID,
				"name":  tasker.Name,
				"email": tasker.Email,
				"bids":  tasker.Bids,
			},
			"access_token":  accessToken,
			"access_expire": time.Now().Add(tokenExpiry).UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
		},
	})
}
