package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SAP-F-2025/quality-service/internal/analysis"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== STUB SERVICE =====

type stubReportService struct {
	analyzeResult *analysis.Result
	analyzeErr    error
	createReport  *models.Report
	createErr     error
	reviewReport  *models.Report
	reviewErr     error
	deleteErr     error

	lastFileName  string
	lastCreateReq *services.CreateReportRequest
	lastReviewReq *services.ReviewReportRequest
}

func (s *stubReportService) AnalyzeUpload(ctx context.Context, fileName string, data []byte) (*analysis.Result, error) {
	s.lastFileName = fileName
	return s.analyzeResult, s.analyzeErr
}

func (s *stubReportService) Create(ctx context.Context, req *services.CreateReportRequest, actor *models.User) (*models.Report, error) {
	s.lastCreateReq = req
	return s.createReport, s.createErr
}

func (s *stubReportService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Report, error) {
	return s.createReport, s.createErr
}

func (s *stubReportService) List(ctx context.Context, req *services.ListReportsRequest, actor *models.User) ([]*models.Report, error) {
	return nil, nil
}

func (s *stubReportService) Review(ctx context.Context, id uint, req *services.ReviewReportRequest, actor *models.User) (*models.Report, error) {
	s.lastReviewReq = req
	return s.reviewReport, s.reviewErr
}

func (s *stubReportService) Delete(ctx context.Context, id uint, actor *models.User) error {
	return s.deleteErr
}

// newReportTestRouter wires the handler behind a minimal router. A non-nil
// user is injected the way the auth middleware would.
func newReportTestRouter(svc services.ReportService, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Set(ContextUserKey, user)
			c.Next()
		})
	}

	handler := NewReportHandler(svc, utils.NewDevelopmentLogger())
	router.POST("/reports/analyze", handler.AnalyzeGradeSheet)
	router.POST("/reports", handler.CreateReport)
	router.PATCH("/reports/:id/status", handler.ReviewReport)
	router.DELETE("/reports/:id", handler.DeleteReport)
	return router
}

// multipartUpload builds a multipart body with a "file" part plus form fields.
func multipartUpload(t *testing.T, fileName string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("workbook bytes"))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ===== TESTS =====

func TestReportHandler_AnalyzeGradeSheet(t *testing.T) {
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}

	t.Run("ReturnsAnalysisResult", func(t *testing.T) {
		svc := &stubReportService{
			analyzeResult: &analysis.Result{StudentCnt: 2, AvgScore: 60, MinScore: 40, MaxScore: 80},
		}
		router := newReportTestRouter(svc, lecturer)

		body, contentType := multipartUpload(t, "notlar.xlsx", nil)
		req := httptest.NewRequest(http.MethodPost, "/reports/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "notlar.xlsx", svc.lastFileName)

		var result analysis.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.StudentCnt)
		assert.InDelta(t, 60.0, result.AvgScore, 1e-9)
	})

	t.Run("MissingFilePart", func(t *testing.T) {
		router := newReportTestRouter(&stubReportService{}, lecturer)

		req := httptest.NewRequest(http.MethodPost, "/reports/analyze", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Dosya yüklenemedi", decodeError(t, rec).Message)
	})

	t.Run("AnalysisErrorsMapTo400", func(t *testing.T) {
		svc := &stubReportService{analyzeErr: analysis.ErrNoValidScores}
		router := newReportTestRouter(svc, lecturer)

		body, contentType := multipartUpload(t, "notlar.xlsx", nil)
		req := httptest.NewRequest(http.MethodPost, "/reports/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, analysis.ErrNoValidScores.Error(), decodeError(t, rec).Message)
	})

	t.Run("UnsupportedFileType", func(t *testing.T) {
		svc := &stubReportService{analyzeErr: services.ErrUnsupportedFileType}
		router := newReportTestRouter(svc, lecturer)

		body, contentType := multipartUpload(t, "notlar.pdf", nil)
		req := httptest.NewRequest(http.MethodPost, "/reports/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportHandler_CreateReport(t *testing.T) {
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}

	t.Run("CreatesPendingReport", func(t *testing.T) {
		svc := &stubReportService{
			createReport: &models.Report{ID: 1, CourseID: 1, Status: models.ReportPending},
		}
		router := newReportTestRouter(svc, lecturer)

		body, contentType := multipartUpload(t, "notlar.xlsx", map[string]string{
			"course_id": "1",
			"term":      "2024-2025 Güz",
		})
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.lastCreateReq)
		assert.Equal(t, uint(1), svc.lastCreateReq.CourseID)
		assert.Equal(t, "2024-2025 Güz", svc.lastCreateReq.Term)
		assert.Equal(t, "notlar.xlsx", svc.lastCreateReq.FileName)
		assert.NotEmpty(t, svc.lastCreateReq.FileData)

		var report models.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, models.ReportPending, report.Status)
	})

	t.Run("InvalidCourseID", func(t *testing.T) {
		router := newReportTestRouter(&stubReportService{}, lecturer)

		body, contentType := multipartUpload(t, "notlar.xlsx", map[string]string{
			"course_id": "abc",
			"term":      "2024-2025 Güz",
		})
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid course_id", decodeError(t, rec).Message)
	})

	t.Run("ForeignCourseIsForbidden", func(t *testing.T) {
		svc := &stubReportService{
			createErr: services.NewPermissionError(2, 1, "course", "submit report for", "not the course lecturer"),
		}
		router := newReportTestRouter(svc, lecturer)

		body, contentType := multipartUpload(t, "notlar.xlsx", map[string]string{
			"course_id": "1",
			"term":      "2024-2025 Güz",
		})
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied", decodeError(t, rec).Message)
	})

	t.Run("UnauthenticatedRequest", func(t *testing.T) {
		router := newReportTestRouter(&stubReportService{}, nil)

		body, contentType := multipartUpload(t, "notlar.xlsx", map[string]string{"course_id": "1"})
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestReportHandler_ReviewReport(t *testing.T) {
	manager := &models.User{ID: 3, Role: models.RoleManager}

	patchStatus := func(t *testing.T, router *gin.Engine, path, status string) *httptest.ResponseRecorder {
		t.Helper()
		payload, err := json.Marshal(map[string]string{"status": status})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("ApprovesReport", func(t *testing.T) {
		svc := &stubReportService{
			reviewReport: &models.Report{ID: 1, Status: models.ReportApproved},
		}
		router := newReportTestRouter(svc, manager)

		rec := patchStatus(t, router, "/reports/1/status", "APPROVED")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.lastReviewReq)
		assert.Equal(t, models.ReportApproved, svc.lastReviewReq.Status)
	})

	t.Run("AlreadyReviewedIsAConflict", func(t *testing.T) {
		svc := &stubReportService{reviewErr: services.ErrReportAlreadyReviewed}
		router := newReportTestRouter(svc, manager)

		rec := patchStatus(t, router, "/reports/1/status", "APPROVED")
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("PermissionErrorIsForbidden", func(t *testing.T) {
		svc := &stubReportService{
			reviewErr: services.NewPermissionError(2, 1, "report", "review", "role cannot review reports"),
		}
		router := newReportTestRouter(svc, manager)

		rec := patchStatus(t, router, "/reports/1/status", "APPROVED")
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("InvalidReportID", func(t *testing.T) {
		router := newReportTestRouter(&stubReportService{}, manager)

		rec := patchStatus(t, router, "/reports/abc/status", "APPROVED")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportHandler_DeleteReport(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}

	t.Run("DeletesReport", func(t *testing.T) {
		router := newReportTestRouter(&stubReportService{}, admin)

		req := httptest.NewRequest(http.MethodDelete, "/reports/1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingReport", func(t *testing.T) {
		svc := &stubReportService{deleteErr: services.ErrReportNotFound}
		router := newReportTestRouter(svc, admin)

		req := httptest.NewRequest(http.MethodDelete, "/reports/404", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
