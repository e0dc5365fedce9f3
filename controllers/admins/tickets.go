package admins

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
)

// GET /v1/admin/tickets
func TicketListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	status := r.URL.Query().Get("status")
	query := db.Model(&models.Ticket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.Ticket
	if err := query.Order("id DESC").Find(&tickets).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "A system error occurred, please try again",
		})
		return
	}

	items := make([]map[string]interface{}, 0, len(tickets))
	for _, t := range tickets {
		var tasker models.Tasker
		db.First(&tasker, t.TaskerID)
		items = append(items, map[string]interface{}{
			"ticket":       t,
			"tasker_name":  tasker.Name,
			"tasker_email": tasker.Email,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    items,
	})
}

type adminTicketReplyRequest struct {
	Message string `json:"message"`
	Close   bool   `json:"close"`
}

// POST /v1/admin/tickets/{id}/replies
func TicketReplyHandler(w http.ResponseWriter, r *http.Request) {
	var req adminTicketReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Message is required",
		})
		return
	}

	db := database.DB
	var ticket models.Ticket
	if err := db.First(&ticket, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Ticket not found",
		})
		return
	}

	reply := models.TicketReply{
		TicketID:  ticket.ID,
		FromAdmin: true,
		Message:   strings.TrimSpace(req.Message),
	}
	if err := db.Create(&reply).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to save reply",
		})
		return
	}

	if req.Close && ticket.Status != models.TicketClosed {
		db.Model(&ticket).Update("status", models.TicketClosed)
	}

	db.Create(&models.Notification{
		UserID:  ticket.TaskerID,
		Title:   "Support replied",
		Message: "There is a new reply on your ticket: " + ticket.Subject,
		Type:    models.NotificationTicket,
	})

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Reply sent",
		Data:    reply,
	})
}

// PUT /v1/admin/tickets/{id}/close
func CloseTicketHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var ticket models.Ticket
	if err := db.First(&ticket, mux.Vars(r)["id"]).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Ticket not found",
		})
		return
	}
	if ticket.Status == models.TicketClosed {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Ticket is already closed",
		})
		return
	}

	if err := db.Model(&ticket).Update("status", models.TicketClosed).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to close ticket",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Ticket closed",
	})
}
