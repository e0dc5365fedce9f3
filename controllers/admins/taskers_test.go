package admins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type AdjustBidsTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *mux.Router
}

func (s *AdjustBidsTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.Require().NoError(s.db.AutoMigrate(
		&models.Tasker{},
		&models.BidTransaction{},
		&models.Notification{},
	))
	database.DB = s.db

	s.router = mux.NewRouter()
	s.router.HandleFunc("/v1/admin/taskers/{id}/bids", AdjustTaskerBidsHandler).Methods(http.MethodPut)
}

func (s *AdjustBidsTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *AdjustBidsTestSuite) adjust(taskerID uint, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/v1/admin/taskers/%d/bids", taskerID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AdjustBidsTestSuite) TestCredit_RecordsAuditTransaction() {
	tasker := &models.Tasker{Name: "Worker", Email: "worker@example.com", Password: "hashed", Bids: 5}
	s.db.Create(tasker)

	w := s.adjust(tasker.ID, map[string]interface{}{"delta": 20, "reason": "Goodwill credit"})
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(25, reloaded.Bids)

	var audit models.BidTransaction
	s.Require().NoError(s.db.Where("tasker_id = ?", tasker.ID).First(&audit).Error)
	s.Equal(20, audit.Bids)
	s.Equal(float64(0), audit.Amount)
	s.Equal(models.TransactionSuccess, audit.Status)
	s.False(audit.TransactionDate.IsZero())

	var notifications int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", tasker.ID).Count(&notifications)
	s.Equal(int64(1), notifications)
}

func (s *AdjustBidsTestSuite) TestDebit_ClampsAtZeroAndAudits() {
	tasker := &models.Tasker{Name: "Worker", Email: "worker2@example.com", Password: "hashed", Bids: 3}
	s.db.Create(tasker)

	w := s.adjust(tasker.ID, map[string]interface{}{"delta": -10})
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(0, reloaded.Bids)

	var audit models.BidTransaction
	s.Require().NoError(s.db.Where("tasker_id = ?", tasker.ID).First(&audit).Error)
	s.Equal(-10, audit.Bids)
}

func (s *AdjustBidsTestSuite) TestZeroDelta_Rejected() {
	tasker := &models.Tasker{Name: "Worker", Email: "worker3@example.com", Password: "hashed", Bids: 3}
	s.db.Create(tasker)

	w := s.adjust(tasker.ID, map[string]interface{}{"delta": 0})
	s.Equal(http.StatusBadRequest, w.Code)

	var audits int64
	s.db.Model(&models.BidTransaction{}).Where("tasker_id = ?", tasker.ID).Count(&audits)
	s.Equal(int64(0), audits)
}

func TestAdjustBidsTestSuite(t *testing.T) {
	suite.Run(t, new(AdjustBidsTestSuite))
}
