package admins

import (
	"net/http"
	"strings"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"
)

type DailyRevenue struct {
	Day    string   `json:"day"`
	Amount *float64 `json:"amount"`
}

type TaskStatusCounts struct {
	Pending  int64 `json:"pending"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Expired  int64 `json:"expired"`
}

type DashboardStats struct {
	TotalTaskers       int64            `json:"total_taskers"`
	SuspendedTaskers   int64            `json:"suspended_taskers"`
	TotalTasks         int64            `json:"total_tasks"`
	Tasks              TaskStatusCounts `json:"tasks"`
	TotalBids          int64            `json:"total_bids"`
	PendingSubmissions int64            `json:"pending_submissions"`
	OpenTickets        int64            `json:"open_tickets"`
	TotalRevenue       float64          `json:"total_revenue"`
	OverviewRevenue    []DailyRevenue   `json:"overview_revenue"`
	TotalPayouts       float64          `json:"total_payouts"`
}

func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := database.DB

	// initialize slice so an empty series serializes as [] not null
	stats.OverviewRevenue = make([]DailyRevenue, 0)

	db.Model(&models.Tasker{}).Count(&stats.TotalTaskers)
	db.Model(&models.Tasker{}).Where("is_suspended = ?", true).Count(&stats.SuspendedTaskers)

	db.Model(&models.Task{}).Count(&stats.TotalTasks)
	db.Model(&models.Task{}).Where("status = ?", models.TaskStatusPending).Count(&stats.Tasks.Pending)
	db.Model(&models.Task{}).Where("status = ?", models.TaskStatusActive).Count(&stats.Tasks.Active)
	db.Model(&models.Task{}).Where("status = ?", models.TaskStatusInactive).Count(&stats.Tasks.Inactive)
	db.Model(&models.Task{}).Where("status = ?", models.TaskStatusExpired).Count(&stats.Tasks.Expired)

	db.Model(&models.TaskBidder{}).Count(&stats.TotalBids)
	db.Model(&models.TaskSubmission{}).Where("status = ?", models.SubmissionPending).Count(&stats.PendingSubmissions)
	db.Model(&models.Ticket{}).Where("status = ?", models.TicketOpen).Count(&stats.OpenTickets)

	type sumResult struct {
		Total float64
	}
	var revenue sumResult
	db.Model(&models.BidTransaction{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ?", models.TransactionSuccess).
		Scan(&revenue)
	stats.TotalRevenue = revenue.Total

	var payouts sumResult
	db.Model(&models.Tasker{}).
		Select("COALESCE(SUM(total_payouts), 0) as total").
		Scan(&payouts)
	stats.TotalPayouts = payouts.Total

	// Revenue by day over the last 7 days, keyed by date then labelled by
	// weekday name
	revenueMap := map[string]float64{}
	rows, err := db.Model(&models.BidTransaction{}).
		Select("DATE_FORMAT(transaction_date, '%Y-%m-%d') as day, COALESCE(SUM(amount), 0) as amount").
		Where("status = ? AND transaction_date >= CURDATE() - INTERVAL 6 DAY", models.TransactionSuccess).
		Group("DATE_FORMAT(transaction_date, '%Y-%m-%d')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var amount float64
			if scanErr := rows.Scan(&day, &amount); scanErr == nil {
				revenueMap[strings.TrimSpace(day)] = amount
			}
		}
	}
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dateKey := d.Format("2006-01-02")
		dayName := d.Format("Monday")
		if val, ok := revenueMap[dateKey]; ok {
			v := val
			stats.OverviewRevenue = append(stats.OverviewRevenue, DailyRevenue{Day: dayName, Amount: &v})
		} else {
			stats.OverviewRevenue = append(stats.OverviewRevenue, DailyRevenue{Day: dayName, Amount: nil})
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
