package admins

import (
	"encoding/json"
	"net/http"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

type SettingRequest struct {
	Name           string `json:"name"`
	Maintenance    bool   `json:"maintenance"`
	ClosedRegister bool   `json:"closed_register"`
	SupportEmail   string `json:"support_email"`
	LinkCommunity  string `json:"link_community"`
}

// GET /v1/admin/settings
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    setting,
	})
}

// PUT /v1/admin/settings
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	db := database.DB
	setting, err := models.GetSetting(db)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	setting.Name = req.Name
	setting.Maintenance = req.Maintenance
	setting.ClosedRegister = req.ClosedRegister
	setting.SupportEmail = req.SupportEmail
	setting.LinkCommunity = req.LinkCommunity

	if err := db.Save(setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to save settings",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Settings updated",
		Data:    setting,
	})
}
