package taskers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

// GET /v1/taskers/tasks
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	category := r.URL.Query().Get("category")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	countQuery := db.Model(&models.Task{}).Where("status = ?", models.TaskStatusActive)
	if category != "" {
		countQuery = countQuery.Where("category = ?", category)
	}
	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var tasks []models.Task
	query := db.Where("status = ?", models.TaskStatusActive)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("deadline ASC").Limit(limit).Offset((page - 1) * limit).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	// Bid state per task for this tasker
	var myBids []models.TaskBidder
	db.Where("bidder_id = ?", uid).Find(&myBids)
	bidMap := map[uint]models.TaskBidder{}
	for _, b := range myBids {
		bidMap[b.TaskID] = b
	}

	items := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		item := map[string]interface{}{
			"id":            t.ID,
			"code":          t.Code,
			"title":         t.Title,
			"description":   t.Description,
			"category":      t.Category,
			"tasker_payout": t.TaskerPayout,
			"bids_needed":   t.BidsNeeded,
			"current_bids":  t.CurrentBids,
			"max_bidders":   t.MaxBidders,
			"deadline":      t.Deadline.Format(time.RFC3339),
			"bid_cost":      models.BidCost(t.Category),
			"full":          t.CurrentBids >= t.MaxBidders,
		}
		if b, taken := bidMap[t.ID]; taken {
			item["taken"] = true
			item["submission_deadline"] = utils.SubmissionDeadline(b.BidDate).Format(time.RFC3339)
		} else {
			item["taken"] = false
		}
		items = append(items, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": int(math.Ceil(float64(totalRows) / float64(limit))),
			},
		},
	})
}

// GET /v1/taskers/bids
//
// Lists the tasker's active bids with their submission deadlines and the
// state of any submitted work.
func MyBidsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB
	now := timeNow()

	var bids []models.TaskBidder
	if err := db.Where("bidder_id = ?", uid).Order("bid_date DESC").Find(&bids).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	items := make([]map[string]interface{}, 0, len(bids))
	for _, b := range bids {
		var task models.Task
		if err := db.First(&task, b.TaskID).Error; err != nil {
			continue
		}
		deadline := utils.SubmissionDeadline(b.BidDate)
		item := map[string]interface{}{
			"task_id":             task.ID,
			"code":                task.Code,
			"title":               task.Title,
			"category":            task.Category,
			"tasker_payout":       task.TaskerPayout,
			"bid_date":            b.BidDate.Format(time.RFC3339),
			"submission_deadline": deadline.Format(time.RFC3339),
			"window_open":         utils.SubmissionWindowOpen(b.BidDate, now),
		}
		var sub models.TaskSubmission
		if err := db.Where("task_id = ? AND bidder_id = ?", task.ID, uid).First(&sub).Error; err == nil {
			item["submission"] = map[string]interface{}{
				"status":           sub.Status,
				"file_name":        sub.FileName,
				"submitted_at":     sub.SubmittedAt.Format(time.RFC3339),
				"rejection_reason": sub.RejectionReason,
			}
		}
		items = append(items, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: items})
}
