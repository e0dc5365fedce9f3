package taskers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
)

type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// POST /v1/taskers/tickets
func CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Subject and message are required"})
		return
	}

	ticket := models.Ticket{
		TaskerID: uid,
		Subject:  req.Subject,
		Message:  req.Message,
		Status:   models.TicketOpen,
	}
	if err := database.DB.Create(&ticket).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create ticket"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Ticket created", Data: ticket})
}

// GET /v1/taskers/tickets
func TicketListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var tickets []models.Ticket
	if err := database.DB.Where("tasker_id = ?", uid).Order("id DESC").Find(&tickets).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tickets})
}

// GET /v1/taskers/tickets/{id}
func TicketDetailHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	ticketID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || ticketID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid ticket id"})
		return
	}

	db := database.DB
	var ticket models.Ticket
	if err := db.Where("id = ? AND tasker_id = ?", uint(ticketID), uid).First(&ticket).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Ticket not found"})
		return
	}
	var replies []models.TicketReply
	db.Where("ticket_id = ?", ticket.ID).Order("id ASC").Find(&replies)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"ticket": ticket, "replies": replies},
	})
}

type TicketReplyRequest struct {
	Message string `json:"message"`
}

// POST /v1/taskers/tickets/{id}/replies
func TicketReplyHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	ticketID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || ticketID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid ticket id"})
		return
	}
	var req TicketReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Message is required"})
		return
	}

	db := database.DB
	var ticket models.Ticket
	if err := db.Where("id = ? AND tasker_id = ?", uint(ticketID), uid).First(&ticket).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Ticket not found"})
		return
	}
	if ticket.Status == models.TicketClosed {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This ticket is closed"})
		return
	}

	reply := models.TicketReply{TicketID: ticket.ID, FromAdmin: false, Message: strings.TrimSpace(req.Message)}
	if err := db.Create(&reply).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save reply"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Reply sent", Data: reply})
}
