package admins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ReviewHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *mux.Router
}

func (s *ReviewHandlerTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.Require().NoError(s.db.AutoMigrate(
		&models.Tasker{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.Notification{},
	))
	database.DB = s.db

	s.router = mux.NewRouter()
	s.router.HandleFunc("/v1/admin/submissions/{id}", ReviewSubmissionHandler).Methods(http.MethodPut)
}

func (s *ReviewHandlerTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *ReviewHandlerTestSuite) seedSubmission() (*models.Tasker, *models.Task, *models.TaskSubmission) {
	tasker := &models.Tasker{Name: "Worker", Email: "worker@example.com", Password: "hashed"}
	s.db.Create(tasker)

	task := &models.Task{
		Code:         "TSK-001",
		Title:        "Label a dataset",
		Category:     models.CategoryGenAI,
		Payout:       500,
		TaskerPayout: 400,
		PlatformFee:  100,
		BidsNeeded:   10,
		MaxBidders:   models.MaxBidders,
		Deadline:     time.Now().Add(24 * time.Hour),
		Status:       models.TaskStatusActive,
	}
	s.db.Create(task)

	submission := &models.TaskSubmission{
		TaskID:      task.ID,
		BidderID:    tasker.ID,
		Status:      models.SubmissionPending,
		FileName:    "work.pdf",
		FileURL:     "submissions/1/abc.pdf",
		SubmittedAt: time.Now(),
	}
	s.db.Create(submission)
	return tasker, task, submission
}

func (s *ReviewHandlerTestSuite) review(submissionID uint, body map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/v1/admin/submissions/%d", submissionID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ReviewHandlerTestSuite) TestApprove_AppliesStatsOnce() {
	tasker, _, submission := s.seedSubmission()

	w := s.review(submission.ID, map[string]string{"status": models.SubmissionApproved})
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.TaskSubmission
	s.db.First(&reloaded, submission.ID)
	s.Equal(models.SubmissionApproved, reloaded.Status)

	var reloadedTasker models.Tasker
	s.db.First(&reloadedTasker, tasker.ID)
	s.Equal(1, reloadedTasker.TasksCompleted)
	s.Equal(float64(400), reloadedTasker.TotalPayouts)

	var notifications int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", tasker.ID).Count(&notifications)
	s.Equal(int64(1), notifications)
}

func (s *ReviewHandlerTestSuite) TestReject_RecordsReason() {
	tasker, _, submission := s.seedSubmission()

	w := s.review(submission.ID, map[string]string{
		"status": models.SubmissionRejected,
		"reason": "Incomplete annotations",
	})
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.TaskSubmission
	s.db.First(&reloaded, submission.ID)
	s.Equal(models.SubmissionRejected, reloaded.Status)
	s.Require().NotNil(reloaded.RejectionReason)
	s.Equal("Incomplete annotations", *reloaded.RejectionReason)

	// no stats applied on rejection
	var reloadedTasker models.Tasker
	s.db.First(&reloadedTasker, tasker.ID)
	s.Equal(0, reloadedTasker.TasksCompleted)
	s.Equal(float64(0), reloadedTasker.TotalPayouts)
}

func (s *ReviewHandlerTestSuite) TestReject_WithoutReason() {
	tasker, _, submission := s.seedSubmission()

	w := s.review(submission.ID, map[string]string{"status": models.SubmissionRejected})
	s.Equal(http.StatusOK, w.Code)

	var reloaded models.TaskSubmission
	s.db.First(&reloaded, submission.ID)
	s.Equal(models.SubmissionRejected, reloaded.Status)
	s.Nil(reloaded.RejectionReason)

	var notifications int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", tasker.ID).Count(&notifications)
	s.Equal(int64(1), notifications)
}

func (s *ReviewHandlerTestSuite) TestReview_InvalidStatus() {
	_, _, submission := s.seedSubmission()

	w := s.review(submission.ID, map[string]string{"status": "maybe"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ReviewHandlerTestSuite) TestReview_NotFound() {
	w := s.review(9999, map[string]string{"status": models.SubmissionApproved})
	s.Equal(http.StatusNotFound, w.Code)
}

func TestReviewHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerTestSuite))
}
