package admins

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/taskers
func TaskerListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := db.Model(&models.Tasker{})
	countQuery := db.Model(&models.Tasker{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
		countQuery = countQuery.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to count taskers",
		})
		return
	}

	var taskers []models.Tasker
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&taskers).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": taskers,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  total,
				"total_pages": int(math.Ceil(float64(total) / float64(limit))),
			},
		},
	})
}

// GET /v1/admin/taskers/{id}
func TaskerDetailHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var tasker models.Tasker
	if err := db.First(&tasker, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Tasker not found",
		})
		return
	}

	var activeBids int64
	db.Model(&models.TaskBidder{}).Where("bidder_id = ?", tasker.ID).Count(&activeBids)
	var submissions []models.TaskSubmission
	db.Where("bidder_id = ?", tasker.ID).Order("submitted_at DESC").Limit(20).Find(&submissions)
	var purchases []models.BidTransaction
	db.Where("tasker_id = ?", tasker.ID).Order("id DESC").Limit(20).Find(&purchases)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"tasker":      tasker,
			"active_bids": activeBids,
			"submissions": submissions,
			"purchases":   purchases,
		},
	})
}

// PUT /v1/admin/taskers/{id}/suspend
func SuspendTaskerHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var tasker models.Tasker
	if err := db.First(&tasker, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Tasker not found",
		})
		return
	}
	if tasker.IsSuspended {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Tasker is already suspended",
		})
		return
	}

	now := time.Now()
	if err := db.Model(&tasker).Updates(map[string]interface{}{
		"is_suspended": true,
		"suspended_at": now,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to suspend tasker",
		})
		return
	}

	db.Create(&models.Notification{
		UserID:  tasker.ID,
		Title:   "Account suspended",
		Message: "Your account has been suspended. Contact support for assistance.",
		Type:    models.NotificationSystem,
	})

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Tasker suspended",
	})
}

// PUT /v1/admin/taskers/{id}/unsuspend
func UnsuspendTaskerHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var tasker models.Tasker
	if err := db.First(&tasker, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Tasker not found",
		})
		return
	}

	if err := db.Model(&tasker).Updates(map[string]interface{}{
		"is_suspended": false,
		"suspended_at": nil,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to unsuspend tasker",
		})
		return
	}

	db.Create(&models.Notification{
		UserID:  tasker.ID,
		Title:   "Account reinstated",
		Message: "Your account suspension has been lifted.",
		Type:    models.NotificationSystem,
	})

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Tasker unsuspended",
	})
}

type adjustBidsRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// PUT /v1/admin/taskers/{id}/bids
//
// Manual balance correction. Negative deltas clamp at zero like every other
// debit path.
func AdjustTaskerBidsHandler(w http.ResponseWriter, r *http.Request) {
	var req adjustBidsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Delta == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Delta must be non-zero",
		})
		return
	}

	db := database.DB
	var tasker models.Tasker
	if err := db.First(&tasker, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Tasker not found",
		})
		return
	}

	var expr interface{}
	if req.Delta > 0 {
		expr = gorm.Expr("bids + ?", req.Delta)
	} else {
		expr = gorm.Expr("CASE WHEN bids - ? < 0 THEN 0 ELSE bids - ? END", -req.Delta, -req.Delta)
	}
	if err := db.Model(&tasker).Update("bids", expr).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to adjust balance",
		})
		return
	}

	// Audit row so manual corrections show up in the transaction ledger
	db.Create(&models.BidTransaction{
		TaskerID:        tasker.ID,
		Amount:          0,
		Bids:            req.Delta,
		Reference:       utils.GenerateReference(tasker.ID),
		Status:          models.TransactionSuccess,
		TransactionDate: time.Now(),
	})

	message := "Your bid balance was adjusted by an administrator."
	if req.Reason != "" {
		message = "Your bid balance was adjusted: " + req.Reason
	}
	db.Create(&models.Notification{
		UserID:  tasker.ID,
		Title:   "Balance adjusted",
		Message: message,
		Type:    models.NotificationSystem,
	})

	db.First(&tasker, tasker.ID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Balance adjusted",
		Data:    map[string]interface{}{"bids": tasker.Bids},
	})
}
