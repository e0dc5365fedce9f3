package taskers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPaygateSecret = "test-secret"

type PaymentWebhookTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *mux.Router
}

func (s *PaymentWebhookTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.Require().NoError(s.db.AutoMigrate(
		&models.Tasker{},
		&models.BidTransaction{},
		&models.Notification{},
	))
	database.DB = s.db

	os.Setenv("PAYGATE_SECRET", testPaygateSecret)

	s.router = mux.NewRouter()
	s.router.HandleFunc("/v1/callback/payments", PaymentWebhookHandler).Methods(http.MethodPost)
}

func (s *PaymentWebhookTestSuite) TearDownTest() {
	os.Unsetenv("PAYGATE_SECRET")
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *PaymentWebhookTestSuite) createPendingPurchase(taskerID uint, bids int, amount float64) *models.BidTransaction {
	txRow := &models.BidTransaction{
		TaskerID:  taskerID,
		Amount:    amount,
		Bids:      bids,
		Reference: fmt.Sprintf("TRQ-TEST-%d", bids),
		Status:    models.TransactionPending,
	}
	s.db.Create(txRow)
	return txRow
}

func (s *PaymentWebhookTestSuite) postWebhook(body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/callback/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		ts := time.Now().UTC().Format(time.RFC3339)
		mac := hmac.New(sha256.New, []byte(testPaygateSecret))
		fmt.Fprintf(mac, "POST:/v1/callback/payments:%s:", ts)
		mac.Write(body)
		req.Header.Set("X-Timestamp", ts)
		req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *PaymentWebhookTestSuite) TestWebhook_SuccessCreditsBalance() {
	tasker := &models.Tasker{Name: "Buyer", Email: "buyer@example.com", Password: "hashed", Bids: 0}
	s.db.Create(tasker)
	txRow := s.createPendingPurchase(tasker.ID, 25, 220)

	body, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "success",
		"amount":    220,
	})
	w := s.postWebhook(body, true)
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(25, reloaded.Bids)

	var reloadedTx models.BidTransaction
	s.db.First(&reloadedTx, txRow.ID)
	s.Equal(models.TransactionSuccess, reloadedTx.Status)
	s.False(reloadedTx.TransactionDate.IsZero())

	var count int64
	s.db.Model(&models.BidTransaction{}).Where("tasker_id = ?", tasker.ID).Count(&count)
	s.Equal(int64(1), count)

	var notifications int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", tasker.ID).Count(&notifications)
	s.Equal(int64(1), notifications)
}

func (s *PaymentWebhookTestSuite) TestWebhook_InvalidSignature() {
	tasker := &models.Tasker{Name: "Buyer", Email: "buyer2@example.com", Password: "hashed", Bids: 0}
	s.db.Create(tasker)
	txRow := s.createPendingPurchase(tasker.ID, 10, 100)

	body, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "success",
		"amount":    100,
	})
	w := s.postWebhook(body, false)
	s.Equal(http.StatusUnauthorized, w.Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(0, reloaded.Bids)
}

func (s *PaymentWebhookTestSuite) TestWebhook_RetryDoesNotDoubleCredit() {
	tasker := &models.Tasker{Name: "Buyer", Email: "buyer3@example.com", Password: "hashed", Bids: 0}
	s.db.Create(tasker)
	txRow := s.createPendingPurchase(tasker.ID, 50, 400)

	body, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "success",
		"amount":    400,
	})
	s.Equal(http.StatusOK, s.postWebhook(body, true).Code)
	s.Equal(http.StatusOK, s.postWebhook(body, true).Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(50, reloaded.Bids)
}

func (s *PaymentWebhookTestSuite) TestWebhook_FailureRecordsNoCredit() {
	tasker := &models.Tasker{Name: "Buyer", Email: "buyer4@example.com", Password: "hashed", Bids: 0}
	s.db.Create(tasker)
	txRow := s.createPendingPurchase(tasker.ID, 10, 100)

	body, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "failed",
		"amount":    100,
	})
	s.Equal(http.StatusOK, s.postWebhook(body, true).Code)

	var reloadedTx models.BidTransaction
	s.db.First(&reloadedTx, txRow.ID)
	s.Equal(models.TransactionFailed, reloadedTx.Status)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(0, reloaded.Bids)
}

func (s *PaymentWebhookTestSuite) TestWebhook_PendingEventLeavesTransactionOpen() {
	tasker := &models.Tasker{Name: "Buyer", Email: "buyer5@example.com", Password: "hashed", Bids: 0}
	s.db.Create(tasker)
	txRow := s.createPendingPurchase(tasker.ID, 25, 220)

	progress, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "pending",
		"amount":    220,
	})
	s.Equal(http.StatusOK, s.postWebhook(progress, true).Code)

	var reloadedTx models.BidTransaction
	s.db.First(&reloadedTx, txRow.ID)
	s.Equal(models.TransactionPending, reloadedTx.Status)

	// the final confirmation still lands
	confirm, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "success",
		"amount":    220,
	})
	s.Equal(http.StatusOK, s.postWebhook(confirm, true).Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(25, reloaded.Bids)
}

func (s *PaymentWebhookTestSuite) TestWebhook_BalanceWriteFailureKeepsTransaction() {
	txRow := s.createPendingPurchase(77, 10, 100)

	// drop the taskers table so the credit write fails after the
	// transaction row has been finalized
	s.Require().NoError(s.db.Migrator().DropTable(&models.Tasker{}))

	body, _ := json.Marshal(map[string]interface{}{
		"reference": txRow.Reference,
		"status":    "success",
		"amount":    100,
	})
	w := s.postWebhook(body, true)
	s.Equal(http.StatusInternalServerError, w.Code)

	var reloadedTx models.BidTransaction
	s.db.First(&reloadedTx, txRow.ID)
	s.Equal(models.TransactionSuccess, reloadedTx.Status)
	s.False(reloadedTx.TransactionDate.IsZero())
}

func (s *PaymentWebhookTestSuite) TestWebhook_UnknownReference() {
	body, _ := json.Marshal(map[string]interface{}{
		"reference": "TRQ-MISSING",
		"status":    "success",
		"amount":    100,
	})
	s.Equal(http.StatusNotFound, s.postWebhook(body, true).Code)
}

func TestPaymentWebhookTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentWebhookTestSuite))
}

func TestListPackages(t *testing.T) {
	w := httptest.NewRecorder()
	ListPackagesHandler(w, httptest.NewRequest(http.MethodGet, "/v1/taskers/bids/packages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp utils.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	packages, ok := resp.Data.([]interface{})
	if !ok || len(packages) == 0 {
		t.Fatalf("expected a non-empty package list, got %v", resp.Data)
	}
}
