package taskers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

func cronAuthorized(r *http.Request) bool {
	key := r.Header.Get("X-CRON-KEY")
	return key != "" && key == os.Getenv("CRON_KEY")
}

// POST /v1/cron/expire-tasks
//
// Flips active and pending tasks whose deadline has passed to expired.
func CronExpireTasksHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	now := timeNow()

	result := db.Model(&models.Task{}).
		Where("deadline < ? AND status IN ?", now, []string{models.TaskStatusActive, models.TaskStatusPending}).
		Update("status", models.TaskStatusExpired)
	if result.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Cron executed",
		Data:    map[string]interface{}{"expired": result.RowsAffected},
	})
}

// POST /v1/cron/notify-pending
//
// Sends at most one reminder per (task, tasker) pair to bidders whose
// submission window closes within two hours and who have not submitted yet.
// Idempotent across runs via an existence check on prior reminders.
func CronDeadlineRemindersHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	now := timeNow()
	sent := 0

	var bids []models.TaskBidder
	if err := db.Find(&bids).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	for _, b := range bids {
		deadline := utils.SubmissionDeadline(b.BidDate)
		if !now.Before(deadline) || deadline.Sub(now) > 2*time.Hour {
			continue
		}

		var submitted int64
		db.Model(&models.TaskSubmission{}).Where("task_id = ? AND bidder_id = ?", b.TaskID, b.BidderID).Count(&submitted)
		if submitted > 0 {
			continue
		}

		var reminded int64
		db.Model(&models.Notification{}).
			Where("user_id = ? AND task_id = ? AND type = ?", b.BidderID, b.TaskID, models.NotificationDeadline).
			Count(&reminded)
		if reminded > 0 {
			continue
		}

		var task models.Task
		if err := db.First(&task, b.TaskID).Error; err != nil {
			continue
		}
		taskID := b.TaskID
		if err := db.Create(&models.Notification{
			UserID:  b.BidderID,
			Title:   "Submission deadline approaching",
			Message: fmt.Sprintf("Your submission for task %s is due at %s.", task.Code, utils.NairobiTime(deadline).Format("15:04")),
			Type:    models.NotificationDeadline,
			TaskID:  &taskID,
		}).Error; err == nil {
			sent++
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Cron executed",
		Data:    map[string]interface{}{"reminders_sent": sent},
	})
}
