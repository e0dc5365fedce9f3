package taskers

import (
	"net/http"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

// GET /v1/taskers/info
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var tasker models.Tasker
	if err := db.First(&tasker, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Account not found"})
		return
	}

	var activeBids int64
	db.Model(&models.TaskBidder{}).Where("bidder_id = ?", uid).Count(&activeBids)
	var pendingSubmissions int64
	db.Model(&models.TaskSubmission{}).Where("bidder_id = ? AND status = ?", uid, models.SubmissionPending).Count(&pendingSubmissions)
	var unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND `read` = ?", uid, false).Count(&unread)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":                   tasker.ID,
			"name":                 tasker.Name,
			"email":                tasker.Email,
			"phone":                tasker.Phone,
			"bids":                 tasker.Bids,
			"tasks_completed":      tasker.TasksCompleted,
			"total_payouts":        tasker.TotalPayouts,
			"pending_payouts":      tasker.PendingPayouts,
			"is_suspended":         tasker.IsSuspended,
			"active_bids":          activeBids,
			"pending_submissions":  pendingSubmissions,
			"unread_notifications": unread,
		},
	})
}
