package admins

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type UploadTasksTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *UploadTasksTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(s.db.AutoMigrate(&models.Task{}))
	database.DB = s.db
}

func (s *UploadTasksTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

// buildWorkbook writes a header row plus the given data rows into an
// in-memory xlsx file.
func (s *UploadTasksTestSuite) buildWorkbook(rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"UniqueCode", "Title", "Category"}
	s.Require().NoError(f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		s.Require().NoError(err)
		s.Require().NoError(f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	s.Require().NoError(err)
	return buf
}

func (s *UploadTasksTestSuite) upload(workbook *bytes.Buffer) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "tasks.xlsx")
	s.Require().NoError(err)
	_, err = part.Write(workbook.Bytes())
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/tasks/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	UploadTasksHandler(w, req)
	return w
}

func (s *UploadTasksTestSuite) decode(w *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *UploadTasksTestSuite) TestUpload_MixedCaseCategoryNormalized() {
	workbook := s.buildWorkbook([][]interface{}{
		{"TSK-100", "Annotate images", "GenAI"},
		{"TSK-101", "Write captions", "CreAI"},
	})

	w := s.upload(workbook)
	s.Equal(http.StatusOK, w.Code)

	var genai models.Task
	s.Require().NoError(s.db.Where("code = ?", "TSK-100").First(&genai).Error)
	s.Equal(models.CategoryGenAI, genai.Category)
	s.Equal(float64(500), genai.Payout)
	s.Equal(float64(400), genai.TaskerPayout)
	s.Equal(float64(100), genai.PlatformFee)
	s.Equal(10, genai.BidsNeeded)

	var creai models.Task
	s.Require().NoError(s.db.Where("code = ?", "TSK-101").First(&creai).Error)
	s.Equal(models.CategoryCreAI, creai.Category)
	s.Equal(float64(250), creai.Payout)
	s.Equal(5, creai.BidsNeeded)
}

func (s *UploadTasksTestSuite) TestUpload_InvalidCategoryReportsRow() {
	workbook := s.buildWorkbook([][]interface{}{
		{"TSK-200", "Annotate images", "other"},
	})

	w := s.upload(workbook)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decode(w)
	data := resp.Data.(map[string]interface{})
	errs := data["errors"].([]interface{})
	s.Require().Len(errs, 1)
	s.Contains(errs[0].(string), "row 2")
	s.Contains(errs[0].(string), "Category")

	var count int64
	s.db.Model(&models.Task{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *UploadTasksTestSuite) TestUpload_MissingUniqueCodeReportsRow() {
	workbook := s.buildWorkbook([][]interface{}{
		{"TSK-300", "Annotate images", "genai"},
		{"", "Write captions", "creai"},
	})

	w := s.upload(workbook)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decode(w)
	data := resp.Data.(map[string]interface{})
	errs := data["errors"].([]interface{})
	s.Require().Len(errs, 1)
	s.Contains(errs[0].(string), "row 3")
	s.Contains(errs[0].(string), "UniqueCode")

	// the whole upload aborts, valid rows included
	var count int64
	s.db.Model(&models.Task{}).Count(&count)
	s.Equal(int64(0), count)
}

func TestUploadTasksTestSuite(t *testing.T) {
	suite.Run(t, new(UploadTasksTestSuite))
}
