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
	"github.com/xuri/excelize/v2"
)

// GET /v1/admin/tasks
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	query := db.Model(&models.Task{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var tasks []models.Task
	if err := query.Order("id DESC").Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	// Bidder and submission counts per task (GROUP BY task_id)
	type taskCount struct {
		TaskID uint
		Cnt    int64
	}
	bidderMap := map[uint]int64{}
	submissionMap := map[uint]int64{}
	var taskIDs []uint
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	if len(taskIDs) > 0 {
		var counts []taskCount
		if err := db.Table("task_bidders").
			Select("task_id, COUNT(*) as cnt").
			Where("task_id IN ?", taskIDs).
			Group("task_id").
			Scan(&counts).Error; err == nil {
			for _, c := range counts {
				bidderMap[c.TaskID] = c.Cnt
			}
		}
		counts = nil
		if err := db.Table("task_submissions").
			Select("task_id, COUNT(*) as cnt").
			Where("task_id IN ?", taskIDs).
			Group("task_id").
			Scan(&counts).Error; err == nil {
			for _, c := range counts {
				submissionMap[c.TaskID] = c.Cnt
			}
		}
	}

	type TaskWithStats struct {
		models.Task
		TotalBidders     int64 `json:"total_bidders"`
		TotalSubmissions int64 `json:"total_submissions"`
	}
	items := make([]TaskWithStats, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, TaskWithStats{
			Task:             t,
			TotalBidders:     bidderMap[t.ID],
			TotalSubmissions: submissionMap[t.ID],
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    items,
	})
}

type TaskRequest struct {
	Code         string   `json:"code"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Payout       *float64 `json:"payout"`
	TaskerPayout *float64 `json:"tasker_payout"`
	PlatformFee  *float64 `json:"platform_fee"`
	BidsNeeded   *int     `json:"bids_needed"`
	Deadline     *string  `json:"deadline"`
}

// POST /v1/admin/tasks
//
// Omitted payout fields fall back to the category defaults; an omitted
// deadline falls back to one day out.
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category != models.CategoryGenAI && category != models.CategoryCreAI {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Category must be genai or creai",
		})
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Code and title are required",
		})
		return
	}

	defaults := models.DefaultsForCategory(category)
	task := models.Task{
		Code:         strings.TrimSpace(req.Code),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     category,
		Payout:       defaults.Payout,
		TaskerPayout: defaults.TaskerPayout,
		PlatformFee:  defaults.PlatformFee,
		BidsNeeded:   defaults.BidsNeeded,
		MaxBidders:   models.MaxBidders,
		Deadline:     time.Now().Add(24 * time.Hour),
		Status:       models.TaskStatusPending,
	}
	if req.Payout != nil {
		task.Payout = *req.Payout
	}
	if req.TaskerPayout != nil {
		task.TaskerPayout = *req.TaskerPayout
	}
	if req.PlatformFee != nil {
		task.PlatformFee = *req.PlatformFee
	}
	if req.BidsNeeded != nil {
		task.BidsNeeded = *req.BidsNeeded
	}
	if req.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Deadline must be RFC3339",
			})
			return
		}
		task.Deadline = parsed
	}

	if err := database.DB.Create(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to create task, the code may already exist",
		})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Task created",
		Data:    task,
	})
}

type toggleTaskRequest struct {
	Status string `json:"status"`
}

// PUT /v1/admin/tasks/{id}/status
func ToggleTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	var req toggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}
	switch req.Status {
	case models.TaskStatusPending, models.TaskStatusActive, models.TaskStatusInactive, models.TaskStatusExpired:
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid status",
		})
		return
	}

	db := database.DB
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Task not found",
		})
		return
	}

	if err := db.Model(&task).Update("status", req.Status).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update task",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task status updated",
		Data:    task,
	})
}

// DELETE /v1/admin/tasks/{id}
//
// Removes the task with its bidders, submissions and stored files.
func DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	db := database.DB
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Task not found",
		})
		return
	}

	var submissions []models.TaskSubmission
	db.Where("task_id = ?", task.ID).Find(&submissions)
	for _, s := range submissions {
		if s.FileURL != "" {
			_ = utils.DeleteFromS3(s.FileURL)
		}
	}

	db.Where("task_id = ?", task.ID).Delete(&models.TaskSubmission{})
	db.Where("task_id = ?", task.ID).Delete(&models.TaskBidder{})
	if err := db.Delete(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to delete task",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task deleted",
	})
}

// maxSpreadsheetBytes caps bulk upload files at 5 MB.
const maxSpreadsheetBytes = 5 << 20

// POST /v1/admin/tasks/upload
//
// Bulk task creation from an xlsx sheet. Headers UniqueCode, Title and
// Category are matched case-insensitively; category values are normalized to
// lower case. Payouts, bid requirements and the one-day deadline are derived
// from the category. Validation failures abort the whole upload and report
// the offending row numbers.
func UploadTasksHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSpreadsheetBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid form data",
		})
		return
	}
	file, handler, err := r.FormFile("file")
	if err != nil || handler == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "A file is required",
		})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(handler.Filename), ".xlsx") {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "File must be an .xlsx spreadsheet",
		})
		return
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Failed to read spreadsheet",
		})
		return
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Spreadsheet has no sheets",
		})
		return
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Spreadsheet has no data rows",
		})
		return
	}

	tasks, rowErrors := parseTaskRows(rows)
	if len(rowErrors) > 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Spreadsheet validation failed",
			Data:    map[string]interface{}{"errors": rowErrors},
		})
		return
	}

	created := 0
	var createErrors []string
	for i := range tasks {
		if err := database.DB.Create(&tasks[i]).Error; err != nil {
			createErrors = append(createErrors, fmt.Sprintf("row %d: failed to create task %s", i+2, tasks[i].Code))
			continue
		}
		created++
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: fmt.Sprintf("%d tasks created", created),
		Data: map[string]interface{}{
			"created": created,
			"errors":  createErrors,
		},
	})
}

// parseTaskRows maps a header row plus data rows to tasks. Row numbers in
// errors are 1-based spreadsheet rows, so the first data row is row 2.
func parseTaskRows(rows [][]string) ([]models.Task, []string) {
	colIndex := map[string]int{}
	for i, h := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	codeCol, codeOK := colIndex["uniquecode"]
	titleCol, titleOK := colIndex["title"]
	categoryCol, categoryOK := colIndex["category"]
	if !codeOK || !titleOK || !categoryOK {
		return nil, []string{"missing required columns: UniqueCode, Title and Category"}
	}

	cell := func(row []string, col int) string {
		if col < len(row) {
			return strings.TrimSpace(row[col])
		}
		return ""
	}

	var tasks []models.Task
	var rowErrors []string
	deadline := time.Now().Add(24 * time.Hour)
	for i, row := range rows[1:] {
		rowNum := i + 2

		code := cell(row, codeCol)
		title := cell(row, titleCol)
		category := strings.ToLower(cell(row, categoryCol))

		if code == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: UniqueCode is required", rowNum))
			continue
		}
		if title == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: Title is required", rowNum))
			continue
		}
		if category != models.CategoryGenAI && category != models.CategoryCreAI {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: Category must be genai or creai", rowNum))
			continue
		}

		defaults := models.DefaultsForCategory(category)
		tasks = append(tasks, models.Task{
			Code:         code,
			Title:        title,
			Category:     category,
			Payout:       defaults.Payout,
			TaskerPayout: defaults.TaskerPayout,
			PlatformFee:  defaults.PlatformFee,
			BidsNeeded:   defaults.BidsNeeded,
			MaxBidders:   models.MaxBidders,
			Deadline:     deadline,
			Status:       models.TaskStatusPending,
		})
	}
	return tasks, rowErrors
}

// GET /v1/admin/tasks/{id}/bidders
func TaskBiddersHandler(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || taskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid task id",
		})
		return
	}

	db := database.DB
	type rowScan struct {
		ID         uint
		BidderID   uint
		BidderName string
		Email      string
		BidDate    time.Time
	}
	var scanned []rowScan
	if err := db.Table("task_bidders AS tb").
		Joins("JOIN taskers t ON tb.bidder_id = t.id").
		Select("tb.id, tb.bidder_id, t.name AS bidder_name, t.email, tb.bid_date").
		Where("tb.task_id = ?", uint(taskID)).
		Order("tb.bid_date ASC").
		Scan(&scanned).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	items := make([]map[string]interface{}, 0, len(scanned))
	for _, s := range scanned {
		items = append(items, map[string]interface{}{
			"id":          s.ID,
			"bidder_id":   s.BidderID,
			"bidder_name": s.BidderName,
			"email":       s.Email,
			"bid_date":    s.BidDate.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    items,
	})
}
