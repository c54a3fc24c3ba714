package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/quality-service/internal/analysis"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// 10 MB upload cap, matching the UI's client-side limit.
const maxUploadSize = 10 << 20

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// AnalyzeGradeSheet analyzes an uploaded grade sheet without saving a report
// @Summary Analyze grade sheet
// @Description Computes grade statistics from an uploaded Excel file without persisting anything
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Grade sheet (.xlsx or .xls)"
// @Success 200 {object} analysis.Result
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/analyze [post]
func (h *ReportHandler) AnalyzeGradeSheet(c *gin.Context) {
	h.LogRequest(c, "Analyzing grade sheet")

	fileName, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.reportService.AnalyzeUpload(c.Request.Context(), fileName, data)
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateReport analyzes a grade sheet and stores the pending report
// @Summary Create report
// @Description Analyzes the uploaded grade sheet and creates a report awaiting review
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Grade sheet (.xlsx or .xls)"
// @Param course_id formData uint true "Course ID"
// @Param term formData string true "Term label, e.g. 2024-2025 Güz"
// @Success 201 {object} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	h.LogRequest(c, "Creating report")

	user := h.requireUser(c)
	if user == nil {
		return
	}

	fileName, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.PostForm("course_id"), 10, 32)
	if err != nil || courseID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid course_id",
			Details: "must be a positive integer",
		})
		return
	}

	req := &services.CreateReportRequest{
		CourseID:     uint(courseID),
		Term:         c.PostForm("term"),
		AcademicYear: c.PostForm("academic_year"),
		Semester:     c.PostForm("semester"),
		FileName:     fileName,
		FileData:     data,
	}

	report, err := h.reportService.Create(c.Request.Context(), req, user)
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports lists reports visible to the caller
// @Summary List reports
// @Description Lists reports, optionally filtered by status and course. Lecturers only see their own courses.
// @Tags reports
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param course_id query uint false "Course ID"
// @Success 200 {array} models.Report
// @Failure 400 {object} ErrorResponse
// @Router /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	req := &services.ListReportsRequest{}
	if status := c.Query("status"); status != "" {
		reportStatus := models.ReportStatus(status)
		req.Status = &reportStatus
	}
	if courseIDStr := c.Query("course_id"); courseIDStr != "" {
		courseID, err := strconv.ParseUint(courseIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid course_id",
				Details: "must be a positive integer",
			})
			return
		}
		id := uint(courseID)
		req.CourseID = &id
	}

	reports, err := h.reportService.List(c.Request.Context(), req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReport returns one report
// @Summary Get report
// @Tags reports
// @Produce json
// @Param id path uint true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type reviewReportBody struct {
	Status models.ReportStatus `json:"status"`
}

// ReviewReport approves or rejects a pending report
// @Summary Review report
// @Description Sets a pending report to APPROVED or REJECTED. Manager and admin only.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path uint true "Report ID"
// @Param review body reviewReportBody true "New status"
// @Success 200 {object} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /reports/{id}/status [patch]
func (h *ReportHandler) ReviewReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var body reviewReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Reviewing report", "report_id", id, "status", body.Status)

	report, err := h.reportService.Review(c.Request.Context(), id, &services.ReviewReportRequest{Status: body.Status}, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report
// @Summary Delete report
// @Description Deletes a report. Admin only.
// @Tags reports
// @Produce json
// @Param id path uint true "Report ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report deleted"})
}

// ===== HELPERS =====

// readUpload extracts the "file" part of a multipart request. On failure it
// writes the 400 response itself.
func (h *ReportHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Dosya yüklenemedi",
			Details: err.Error(),
		})
		return "", nil, false
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Dosya boyutu 10 MB sınırını aşıyor",
		})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Dosya yüklenemedi",
			Details: err.Error(),
		})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Dosya yüklenemedi",
			Details: err.Error(),
		})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// handleUploadError maps analysis failures to 400 before falling back to the
// shared service error mapping.
func (h *ReportHandler) handleUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrUnreadableFile),
		errors.Is(err, analysis.ErrNoSheets),
		errors.Is(err, analysis.ErrNoScoreColumn),
		errors.Is(err, analysis.ErrNoValidScores):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.handleServiceError(c, err)
	}
}
