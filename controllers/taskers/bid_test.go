package taskers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

type BidHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *mux.Router
}

func (s *BidHandlerTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.Require().NoError(s.db.AutoMigrate(
		&models.Tasker{},
		&models.Task{},
		&models.TaskBidder{},
		&models.TaskSubmission{},
		&models.Notification{},
	))
	database.DB = s.db

	// Monday 10:00 Nairobi, well outside the blackout window
	timeNow = func() time.Time {
		return time.Date(2024, 1, 8, 10, 0, 0, 0, time.FixedZone("EAT", 3*3600))
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/v1/taskers/tasks/{id}/bid", PlaceBidHandler).Methods(http.MethodPost)
}

func (s *BidHandlerTestSuite) TearDownTest() {
	timeNow = time.Now
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *BidHandlerTestSuite) createTasker(bids int) *models.Tasker {
	tasker := &models.Tasker{
		Name:     "Test Tasker",
		Email:    fmt.Sprintf("tasker%d@example.com", bids),
		Password: "hashed",
		Bids:     bids,
	}
	s.db.Create(tasker)
	return tasker
}

func (s *BidHandlerTestSuite) createTask(category string) *models.Task {
	defaults := models.DefaultsForCategory(category)
	task := &models.Task{
		Code:         fmt.Sprintf("TSK-%s-%d", category, time.Now().UnixNano()),
		Title:        "Label a dataset",
		Category:     category,
		Payout:       defaults.Payout,
		TaskerPayout: defaults.TaskerPayout,
		PlatformFee:  defaults.PlatformFee,
		BidsNeeded:   defaults.BidsNeeded,
		MaxBidders:   models.MaxBidders,
		Deadline:     time.Now().Add(24 * time.Hour),
		Status:       models.TaskStatusActive,
	}
	s.db.Create(task)
	return task
}

func (s *BidHandlerTestSuite) placeBid(taskID, uid uint) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v1/taskers/tasks/%d/bid", taskID), nil)
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, uid))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BidHandlerTestSuite) decode(w *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *BidHandlerTestSuite) TestPlaceBid_Success() {
	tasker := s.createTasker(20)
	task := s.createTask(models.CategoryGenAI)

	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusOK, w.Code)

	resp := s.decode(w)
	s.True(resp.Success)
	data := resp.Data.(map[string]interface{})
	s.Equal(float64(10), data["bid_cost"])
	s.Equal("2024-01-08T16:00:00+03:00", data["submission_deadline"])

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(10, reloaded.Bids)

	var bidders int64
	s.db.Model(&models.TaskBidder{}).Where("task_id = ?", task.ID).Count(&bidders)
	s.Equal(int64(1), bidders)

	var reloadedTask models.Task
	s.db.First(&reloadedTask, task.ID)
	s.Equal(1, reloadedTask.CurrentBids)

	var notifications int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", tasker.ID).Count(&notifications)
	s.Equal(int64(1), notifications)
}

func (s *BidHandlerTestSuite) TestPlaceBid_InsufficientBalanceMessage() {
	tasker := s.createTasker(4)
	task := s.createTask(models.CategoryCreAI)

	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decode(w)
	s.False(resp.Success)
	s.Equal("insufficient_bids", resp.Message)

	data := resp.Data.(map[string]interface{})
	s.Equal(float64(5), data["required"])
	s.Equal(float64(4), data["balance"])

	var bidders int64
	s.db.Model(&models.TaskBidder{}).Count(&bidders)
	s.Equal(int64(0), bidders)
}

func (s *BidHandlerTestSuite) TestPlaceBid_Duplicate() {
	tasker := s.createTasker(50)
	task := s.createTask(models.CategoryGenAI)

	s.Equal(http.StatusOK, s.placeBid(task.ID, tasker.ID).Code)
	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusConflict, w.Code)

	// charged only once
	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(40, reloaded.Bids)
}

func (s *BidHandlerTestSuite) TestPlaceBid_CapacityReached() {
	tasker := s.createTasker(50)
	task := s.createTask(models.CategoryGenAI)

	for i := 0; i < task.MaxBidders; i++ {
		s.db.Create(&models.TaskBidder{TaskID: task.ID, BidderID: uint(100 + i), BidDate: timeNow()})
	}

	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.decode(w).Message, "maximum number of bidders")
}

func (s *BidHandlerTestSuite) TestPlaceBid_RejectedSubmissionBars() {
	tasker := s.createTasker(50)
	task := s.createTask(models.CategoryGenAI)

	s.db.Create(&models.TaskSubmission{
		TaskID:      task.ID,
		BidderID:    tasker.ID,
		Status:      models.SubmissionRejected,
		SubmittedAt: timeNow(),
	})

	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("You are not eligible to bid on this task", s.decode(w).Message)
}

func (s *BidHandlerTestSuite) TestPlaceBid_BlackoutRejectsBeforeAnyWrite() {
	tasker := s.createTasker(50)
	task := s.createTask(models.CategoryGenAI)

	// Thursday 16:30 Nairobi
	timeNow = func() time.Time {
		return time.Date(2024, 1, 4, 16, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	}

	w := s.placeBid(task.ID, tasker.ID)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(utils.BlackoutMessage, s.decode(w).Message)

	var bidders int64
	s.db.Model(&models.TaskBidder{}).Count(&bidders)
	s.Equal(int64(0), bidders)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(50, reloaded.Bids)
}

func (s *BidHandlerTestSuite) TestPlaceBid_BalanceClampsAtZero() {
	tasker := s.createTasker(10)
	task := s.createTask(models.CategoryGenAI)

	s.Equal(http.StatusOK, s.placeBid(task.ID, tasker.ID).Code)

	var reloaded models.Tasker
	s.db.First(&reloaded, tasker.ID)
	s.Equal(0, reloaded.Bids)
}

func (s *BidHandlerTestSuite) TestPlaceBid_TaskNotFound() {
	tasker := s.createTasker(50)
	w := s.placeBid(9999, tasker.ID)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestBidHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BidHandlerTestSuite))
}
