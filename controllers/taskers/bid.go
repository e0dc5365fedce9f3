package taskers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// timeNow is swapped out in tests to pin the business clock.
var timeNow = time.Now

// InsufficientBidsMessage is matched verbatim by clients to offer the
// purchase shortcut; do not reword it.
const InsufficientBidsMessage = "insufficient_bids"

// clampedDebit decrements a balance column by cost, clamping at zero.
func clampedDebit(column string, cost int) clause.Expr {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s - ? < 0 THEN 0 ELSE %s - ? END", column, column), cost, cost)
}

// POST /v1/taskers/tasks/{id}/bid
//
// Eligibility checks run in a fixed order, each a hard rejection: blackout
// window, session, balance, duplicate bid, capacity, prior rejection. The
// effects are independently committed writes with no cross-row transaction;
// set BID_ATOMIC=true to run them under a locking transaction instead.
func PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	now := timeNow()

	if utils.InBidBlackout(now) {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: utils.BlackoutMessage})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || taskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	db := database.DB

	var task models.Task
	if err := db.First(&task, uint(taskID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var tasker models.Tasker
	if err := db.First(&tasker, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Tasker not found"})
		return
	}

	cost := models.BidCost(task.Category)
	if tasker.Bids < cost {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: InsufficientBidsMessage,
			Data:    map[string]interface{}{"required": cost, "balance": tasker.Bids},
		})
		return
	}

	var existing int64
	if err := db.Model(&models.TaskBidder{}).Where("task_id = ? AND bidder_id = ?", task.ID, uid).Count(&existing).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if existing > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You have already placed a bid on this task"})
		return
	}

	var bidders int64
	if err := db.Model(&models.TaskBidder{}).Where("task_id = ?", task.ID).Count(&bidders).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if bidders >= int64(task.MaxBidders) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This task has reached its maximum number of bidders"})
		return
	}

	var rejected int64
	if err := db.Model(&models.TaskSubmission{}).Where("task_id = ? AND bidder_id = ? AND status = ?", task.ID, uid, models.SubmissionRejected).Count(&rejected).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if rejected > 0 {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You are not eligible to bid on this task"})
		return
	}

	deadline := utils.SubmissionDeadline(now)

	if os.Getenv("BID_ATOMIC") == "true" {
		err = placeBidAtomic(db, &task, uid, cost, now, deadline)
	} else {
		err = placeBidSequential(db, &task, uid, cost, now, deadline)
	}
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to place bid"})
		return
	}

	var refreshed models.Task
	if err := db.First(&refreshed, task.ID).Error; err != nil {
		refreshed = task
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Bid placed",
		Data: map[string]interface{}{
			"task":                refreshed,
			"bid_cost":            cost,
			"submission_deadline": deadline.Format(time.RFC3339),
		},
	})
}

// placeBidSequential performs the bid effects as separately committed writes.
// A failure partway through leaves earlier writes in place.
func placeBidSequential(db *gorm.DB, task *models.Task, uid uint, cost int, now, deadline time.Time) error {
	if err := db.Create(&models.TaskBidder{TaskID: task.ID, BidderID: uid, BidDate: now}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Task{}).Where("id = ?", task.ID).Update("current_bids", gorm.Expr("current_bids + ?", 1)).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Tasker{}).Where("id = ?", uid).Update("bids", clampedDebit("bids", cost)).Error; err != nil {
		return err
	}
	db.Create(&models.Notification{
		UserID:  uid,
		Title:   "Bid placed",
		Message: fmt.Sprintf("Your bid on task %s was placed. Submit your work before %s.", task.Code, utils.NairobiTime(deadline).Format("Mon 15:04")),
		Type:    models.NotificationBid,
		TaskID:  &task.ID,
	})
	return nil
}

// placeBidAtomic re-runs the balance and capacity checks under row locks and
// commits all effects together.
func placeBidAtomic(db *gorm.DB, task *models.Task, uid uint, cost int, now, deadline time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var lockedTask models.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lockedTask, task.ID).Error; err != nil {
			return err
		}
		var bidders int64
		if err := tx.Model(&models.TaskBidder{}).Where("task_id = ?", task.ID).Count(&bidders).Error; err != nil {
			return err
		}
		if bidders >= int64(lockedTask.MaxBidders) {
			return errors.New("task is full")
		}
		var lockedTasker models.Tasker
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lockedTasker, uid).Error; err != nil {
			return err
		}
		if lockedTasker.Bids < cost {
			return errors.New(InsufficientBidsMessage)
		}
		if err := tx.Create(&models.TaskBidder{TaskID: task.ID, BidderID: uid, BidDate: now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Update("current_bids", gorm.Expr("current_bids + ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Tasker{}).Where("id = ?", uid).Update("bids", clampedDebit("bids", cost)).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			UserID:  uid,
			Title:   "Bid placed",
			Message: fmt.Sprintf("Your bid on task %s was placed. Submit your work before %s.", task.Code, utils.NairobiTime(deadline).Format("Mon 15:04")),
			Type:    models.NotificationBid,
			TaskID:  &task.ID,
		}).Error
	})
}
