package taskers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"gorm.io/gorm"
)

// BidPackage is a purchasable bundle of bid credits.
type BidPackage struct {
	Bids  int     `json:"bids"`
	Price float64 `json:"price"`
	Label string  `json:"label"`
}

// Catalog sold through the payment gateway. Prices are KES.
var bidPackages = []BidPackage{
	{Bids: 10, Price: 100, Label: "Starter"},
	{Bids: 25, Price: 220, Label: "Regular"},
	{Bids: 50, Price: 400, Label: "Pro"},
}

func findPackage(bids int) *BidPackage {
	for i := range bidPackages {
		if bidPackages[i].Bids == bids {
			return &bidPackages[i]
		}
	}
	return nil
}

// GET /v1/taskers/bids/packages
func ListPackagesHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: bidPackages})
}

type PurchaseRequest struct {
	Bids int `json:"bids"`
}

// POST /v1/taskers/bids/purchase
//
// Records a pending bid_transaction and opens a gateway checkout; credits are
// applied when the gateway confirms via webhook.
func PurchaseBidsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	pkg := findPackage(req.Bids)
	if pkg == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown bid package"})
		return
	}

	db := database.DB
	reference := utils.GenerateReference(uid)
	txRow := models.BidTransaction{
		TaskerID:  uid,
		Amount:    pkg.Price,
		Bids:      pkg.Bids,
		Reference: reference,
		Status:    models.TransactionPending,
	}
	if err := db.Create(&txRow).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create transaction"})
		return
	}

	checkout, err := utils.CreateCheckout(reference, pkg.Price, pkg.Label+" bid package")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Payment provider unavailable, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Checkout created",
		Data: map[string]interface{}{
			"reference":    reference,
			"bids":         pkg.Bids,
			"amount":       pkg.Price,
			"checkout_url": checkout.CheckoutURL,
		},
	})
}

type paymentWebhookPayload struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
}

// POST /v1/callback/payments
//
// Gateway confirmation. The transaction row is finalized before the balance
// is credited; a failed balance write leaves the Success row in place (the
// mismatch is reconciled from the transaction log, never by dropping the
// payment record).
func PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid body"})
		return
	}
	if !utils.VerifyWebhookSignature(r, body) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid signature"})
		return
	}
	var payload paymentWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Reference == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payload"})
		return
	}

	db := database.DB
	var txRow models.BidTransaction
	if err := db.Where("reference = ?", payload.Reference).First(&txRow).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Unknown reference"})
		return
	}
	if txRow.Status != models.TransactionPending {
		// already processed; acknowledge so the gateway stops retrying
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Already processed"})
		return
	}

	switch payload.Status {
	case "success":
	case "failed", "cancelled", "expired":
		db.Model(&txRow).Updates(map[string]interface{}{"status": models.TransactionFailed, "transaction_date": time.Now()})
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment failed recorded"})
		return
	default:
		// progress event (e.g. pending); the gateway sends a final status later
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Acknowledged"})
		return
	}

	if err := db.Model(&txRow).Updates(map[string]interface{}{"status": models.TransactionSuccess, "transaction_date": time.Now()}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update transaction"})
		return
	}

	if err := db.Model(&models.Tasker{}).Where("id = ?", txRow.TaskerID).Update("bids", gorm.Expr("bids + ?", txRow.Bids)).Error; err != nil {
		// transaction row stays Success; surfaced as a generic failure
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to credit bids"})
		return
	}

	db.Create(&models.Notification{
		UserID:  txRow.TaskerID,
		Title:   "Bids credited",
		Message: "Your bid package purchase was confirmed.",
		Type:    models.NotificationSystem,
	})

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment processed"})
}
