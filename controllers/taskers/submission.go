package taskers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// maxSubmissionBytes caps uploaded work files at 10 MB.
const maxSubmissionBytes = 10 << 20

var allowedSubmissionExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// sniffed content types accepted per extension; doc/docx arrive as OLE or
// zip containers, so the detector cannot be stricter than this
var allowedSubmissionMIME = map[string]bool{
	"application/pdf":           true,
	"application/zip":           true,
	"application/x-ole-storage": true,
	"application/octet-stream":  true,
	"application/msword":        true,
	"text/plain; charset=utf-8": true,
	"text/plain":                true,
}

// POST /v1/taskers/tasks/{id}/submission
func UploadSubmissionHandler(w http.ResponseWriter, r *http.Request) {
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
	now := timeNow()

	var task models.Task
	if err := db.First(&task, uint(taskID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	// Only bidders can submit, and only inside their submission window
	var bidder models.TaskBidder
	if err := db.Where("task_id = ? AND bidder_id = ?", task.ID, uid).First(&bidder).Error; err != nil {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You have not bid on this task"})
		return
	}
	if !utils.SubmissionWindowOpen(bidder.BidDate, now) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "The submission window for this task has closed"})
		return
	}

	var existing int64
	db.Model(&models.TaskSubmission{}).Where("task_id = ? AND bidder_id = ?", task.ID, uid).Count(&existing)
	if existing > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You have already submitted work for this task"})
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}
	file, handler, err := r.FormFile("file")
	if err != nil || handler == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "A file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedSubmissionExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File must be PDF, DOC, DOCX or TXT"})
		return
	}
	if handler.Size > maxSubmissionBytes {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File must be 10MB or smaller"})
		return
	}

	// Sniff the first 512 bytes to reject files whose content does not match
	// the extension
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read file"})
		return
	}
	detected := http.DetectContentType(buf[:n])
	if !allowedSubmissionMIME[detected] && !strings.HasPrefix(detected, "text/plain") {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File content does not match an accepted document type"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to read file"})
		return
	}

	objectKey := fmt.Sprintf("submissions/%d/%s%s", task.ID, uuid.NewString(), ext)
	if err := utils.UploadToS3(objectKey, file, handler.Size); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store file"})
		return
	}

	sub := models.TaskSubmission{
		TaskID:      task.ID,
		BidderID:    uid,
		Status:      models.SubmissionPending,
		FileName:    handler.Filename,
		FileURL:     objectKey,
		SubmittedAt: now,
	}
	if err := db.Create(&sub).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to record submission"})
		return
	}

	db.Create(&models.Notification{
		UserID:  uid,
		Title:   "Submission received",
		Message: fmt.Sprintf("Your work for task %s is in review.", task.Code),
		Type:    models.NotificationSubmission,
		TaskID:  &task.ID,
	})

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Submission received", Data: sub})
}
