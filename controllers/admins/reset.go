package admins

import (
	"net/http"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

// POST /v1/admin/system/reset
//
// Wipes the marketplace back to a clean slate: all tasks, bids, submissions,
// notifications, purchase records and tickets, plus every tasker's balance,
// stats and suspension state. Each delete commits independently; a failure
// partway through leaves earlier deletes in place and is reported as a
// generic failure.
func ResetPlatformHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	steps := []func() error{
		func() error { return db.Where("1 = 1").Delete(&models.TaskBidder{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.TaskSubmission{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.Task{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.Notification{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.BidTransaction{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.TicketReply{}).Error },
		func() error { return db.Where("1 = 1").Delete(&models.Ticket{}).Error },
		func() error {
			return db.Model(&models.Tasker{}).Where("1 = 1").Updates(map[string]interface{}{
				"bids":            0,
				"tasks_completed": 0,
				"total_payouts":   0,
				"pending_payouts": 0,
				"is_suspended":    false,
				"suspended_at":    nil,
			}).Error
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Reset did not complete, please retry",
			})
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Platform reset",
	})
}
