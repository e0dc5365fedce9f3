package admins

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

// GET /v1/admin/transactions
//
// Bid-package purchase history across all taskers, newest first.
func TransactionListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := db.Model(&models.BidTransaction{})
	countQuery := db.Model(&models.BidTransaction{})
	if status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to count transactions",
		})
		return
	}

	type rowScan struct {
		ID              uint
		TaskerID        uint
		TaskerName      string
		Amount          float64
		Bids            int
		Reference       string
		Status          string
		TransactionDate time.Time
	}
	var scanned []rowScan
	txQuery := db.Table("bid_transactions AS bt").
		Joins("JOIN taskers t ON bt.tasker_id = t.id").
		Select("bt.id, bt.tasker_id, t.name AS tasker_name, bt.amount, bt.bids, bt.reference, bt.status, bt.transaction_date")
	if status != "" {
		txQuery = txQuery.Where("bt.status = ?", status)
	}
	if err := txQuery.Order("bt.id DESC").Offset(offset).Limit(limit).Scan(&scanned).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	items := make([]map[string]interface{}, 0, len(scanned))
	for _, s := range scanned {
		items = append(items, map[string]interface{}{
			"id":               s.ID,
			"tasker_id":        s.TaskerID,
			"tasker_name":      s.TaskerName,
			"amount":           s.Amount,
			"bids":             s.Bids,
			"reference":        s.Reference,
			"status":           s.Status,
			"transaction_date": s.TransactionDate.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  total,
				"total_pages": int(math.Ceil(float64(total) / float64(limit))),
			},
		},
	})
}
