package admins

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/submissions
//
// Defaults to the pending review queue; pass status to see reviewed work.
// File links are presigned with a short expiry.
func SubmissionListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.SubmissionPending
	}

	var submissions []models.TaskSubmission
	if err := db.Where("status = ?", status).Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	items := make([]map[string]interface{}, 0, len(submissions))
	for _, s := range submissions {
		var task models.Task
		db.First(&task, s.TaskID)
		var tasker models.Tasker
		db.First(&tasker, s.BidderID)

		item := map[string]interface{}{
			"id":               s.ID,
			"task_id":          s.TaskID,
			"task_code":        task.Code,
			"task_title":       task.Title,
			"tasker_payout":    task.TaskerPayout,
			"bidder_id":        s.BidderID,
			"bidder_name":      tasker.Name,
			"status":           s.Status,
			"rejection_reason": s.RejectionReason,
			"file_name":        s.FileName,
			"submitted_at":     s.SubmittedAt.Format(time.RFC3339),
		}
		if s.FileURL != "" {
			if url, err := utils.GenerateSignedURL(s.FileURL, 900); err == nil {
				item["file_url"] = url
			}
		}
		items = append(items, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    items,
	})
}

type ReviewRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// PUT /v1/admin/submissions/{id}
//
// Approve or reject a submission. Approval credits the tasker's completion
// stats and payout total and notifies them; rejection records the reason and
// permanently bars the tasker from re-bidding on the task.
func ReviewSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	submissionID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || submissionID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid submission id",
		})
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Status != models.SubmissionApproved && req.Status != models.SubmissionRejected {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Status must be approved or rejected",
		})
		return
	}

	db := database.DB
	var submission models.TaskSubmission
	if err := db.First(&submission, uint(submissionID)).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Submission not found",
		})
		return
	}
	var task models.Task
	if err := db.First(&task, submission.TaskID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Task not found",
		})
		return
	}

	// The reason is contextual on rejection, never mandatory
	updates := map[string]interface{}{"status": req.Status}
	reason := strings.TrimSpace(req.Reason)
	if req.Status == models.SubmissionRejected && reason != "" {
		updates["rejection_reason"] = reason
	}
	if err := db.Model(&submission).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update submission",
		})
		return
	}

	taskID := submission.TaskID
	if req.Status == models.SubmissionApproved {
		if err := db.Model(&models.Tasker{}).Where("id = ?", submission.BidderID).Updates(map[string]interface{}{
			"tasks_completed": gorm.Expr("tasks_completed + ?", 1),
			"total_payouts":   gorm.Expr("total_payouts + ?", task.TaskerPayout),
		}).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Failed to update tasker stats",
			})
			return
		}
		db.Create(&models.Notification{
			UserID:  submission.BidderID,
			Title:   "Submission approved",
			Message: fmt.Sprintf("Your work for task %s was approved. KES %.2f has been added to your payouts.", task.Code, task.TaskerPayout),
			Type:    models.NotificationSubmission,
			TaskID:  &taskID,
		})
	} else {
		message := fmt.Sprintf("Your work for task %s was rejected.", task.Code)
		if reason != "" {
			message = fmt.Sprintf("Your work for task %s was rejected: %s", task.Code, reason)
		}
		db.Create(&models.Notification{
			UserID:  submission.BidderID,
			Title:   "Submission rejected",
			Message: message,
			Type:    models.NotificationSubmission,
			TaskID:  &taskID,
		})
	}

	db.First(&submission, submission.ID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Submission reviewed",
		Data:    submission,
	})
}
