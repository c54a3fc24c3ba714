package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/SAP-F-2025/quality-service/internal/analysis"
	"github.com/SAP-F-2025/quality-service/internal/cache"
	apperrors "github.com/SAP-F-2025/quality-service/internal/errors"
	"github.com/SAP-F-2025/quality-service/internal/events"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"github.com/SAP-F-2025/quality-service/internal/validator"
)

const (
	reportCacheTTL     = 10 * time.Minute
	reportCachePattern = "reports:*"
)

type ReportService interface {
	// AnalyzeUpload runs the grade sheet analysis without persisting anything.
	AnalyzeUpload(ctx context.Context, fileName string, data []byte) (*analysis.Result, error)

	Create(ctx context.Context, req *CreateReportRequest, actor *models.User) (*models.Report, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.Report, error)
	List(ctx context.Context, req *ListReportsRequest, actor *models.User) ([]*models.Report, error)
	Review(ctx context.Context, id uint, req *ReviewReportRequest, actor *models.User) (*models.Report, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type reportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	analyzer  *analysis.Analyzer
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewReportService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analyzer *analysis.Analyzer,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) ReportService {
	return &reportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		analyzer:  analyzer,
		publisher: publisher,
		cache:     cacheService,
	}
}

// ===== REQUEST TYPES =====

type CreateReportRequest struct {
	CourseID     uint   `json:"course_id" validate:"required"`
	Term         string `json:"term" validate:"required,min=1,max=30"`
	AcademicYear string `json:"academic_year" validate:"omitempty,academic_year"`
	Semester     string `json:"semester" validate:"omitempty,max=20"`
	FileName     string `json:"file_name" validate:"required"`
	FileData     []byte `json:"-" validate:"required"`
}

type ListReportsRequest struct {
	Status   *models.ReportStatus `json:"status" validate:"omitempty,report_status"`
	CourseID *uint                `json:"course_id"`
}

type ReviewReportRequest struct {
	Status models.ReportStatus `json:"status" validate:"required,report_status"`
}

// ===== OPERATIONS =====

func (s *reportService) AnalyzeUpload(ctx context.Context, fileName string, data []byte) (*analysis.Result, error) {
	if err := checkSpreadsheetName(fileName); err != nil {
		return nil, err
	}
	result, err := s.analyzer.Analyze(data)
	if err != nil {
		s.logger.Warn("Grade sheet analysis failed", "file_name", fileName, "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Grade sheet analyzed",
		"file_name", fileName,
		"students", result.StudentCnt,
		"avg_score", result.AvgScore)
	return result, nil
}

// Create analyzes the uploaded sheet and stores the resulting report in
// PENDING state for the department review board.
func (s *reportService) Create(ctx context.Context, req *CreateReportRequest, actor *models.User) (*models.Report, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	course, err := s.repo.Course().GetByID(ctx, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", req.CourseID, err)
	}

	if actor.Role == models.RoleLecturer && course.LecturerID != actor.ID {
		return nil, NewPermissionError(actor.ID, course.ID, "course", "submit report for", "not the course lecturer")
	}

	result, err := s.AnalyzeUpload(ctx, req.FileName, req.FileData)
	if err != nil {
		return nil, err
	}

	distribution, err := json.Marshal(result.GradeDistribution)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grade distribution: %w", err)
	}

	report := &models.Report{
		CourseID:          req.CourseID,
		Term:              req.Term,
		MinScore:          result.MinScore,
		MaxScore:          result.MaxScore,
		AvgScore:          result.AvgScore,
		MedianScore:       &result.MedianScore,
		StdDev:            &result.StdDev,
		StudentCnt:        result.StudentCnt,
		PassCount:         &result.PassCount,
		FailCount:         &result.FailCount,
		PassRate:          &result.PassRate,
		GradeDistribution: distribution,
		FileName:          &req.FileName,
		Status:            models.ReportPending,
	}
	if req.AcademicYear != "" {
		report.AcademicYear = req.AcademicYear
	}
	if req.Semester != "" {
		report.Semester = req.Semester
	}

	if err := s.repo.Report().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.invalidateReportCache(ctx)

	event := events.NewReportSubmittedEvent(report, course.Code, course.LecturerID)
	if err := s.publisher.PublishQualityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish report submitted event", "report_id", report.ID, "error", err)
	}

	s.logger.Info("Report created",
		"report_id", report.ID,
		"course_id", report.CourseID,
		"term", report.Term,
		"students", report.StudentCnt,
		"actor_id", actor.ID)

	return s.repo.Report().GetByID(ctx, report.ID)
}

func (s *reportService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Report, error) {
	cacheKey := fmt.Sprintf("reports:%d", id)
	var cached models.Report
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		if err := s.checkReportAccess(&cached, actor); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	report, err := s.repo.Report().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}

	if err := s.checkReportAccess(report, actor); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, report, reportCacheTTL); err != nil {
		s.logger.Debug("Report cache write failed", "report_id", id, "error", err)
	}
	return report, nil
}

// List returns reports visible to the actor. Lecturers only ever see reports
// of their own courses regardless of the requested filters.
func (s *reportService) List(ctx context.Context, req *ListReportsRequest, actor *models.User) ([]*models.Report, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	filters := repositories.ReportFilters{
		Status:   req.Status,
		CourseID: req.CourseID,
	}
	if actor.Role == models.RoleLecturer {
		lecturerID := actor.ID
		filters.LecturerID = &lecturerID
	}

	return s.repo.Report().List(ctx, filters)
}

// Review approves or rejects a pending report. Only manager and admin roles
// may review; a report is reviewed exactly once.
func (s *reportService) Review(ctx context.Context, id uint, req *ReviewReportRequest, actor *models.User) (*models.Report, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	if req.Status != models.ReportApproved && req.Status != models.ReportRejected {
		return nil, ErrReportInvalidStatus
	}
	if !actor.Role.CanReview() {
		return nil, NewPermissionError(actor.ID, id, "report", "review", "role cannot review reports")
	}

	report, err := s.repo.Report().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}
	if report.Status != models.ReportPending {
		return nil, ErrReportAlreadyReviewed
	}

	updated, err := s.repo.Report().UpdateStatus(ctx, id, req.Status, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update report %d status: %w", id, err)
	}

	s.invalidateReportCache(ctx)

	event := events.NewReportReviewedEvent(updated, updated.Course.Code, actor.ID)
	if err := s.publisher.PublishQualityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish report reviewed event", "report_id", id, "error", err)
	}

	s.logger.Info("Report reviewed",
		"report_id", id,
		"status", updated.Status,
		"reviewer_id", actor.ID)

	return updated, nil
}

func (s *reportService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actor.ID, id, "report", "delete", "only admins may delete reports")
	}

	report, err := s.repo.Report().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to get report %d: %w", id, err)
	}

	if err := s.repo.Report().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report %d: %w", id, err)
	}

	s.invalidateReportCache(ctx)

	event := events.NewReportDeletedEvent(report.ID, report.CourseID, actor.ID)
	if err := s.publisher.PublishQualityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish report deleted event", "report_id", id, "error", err)
	}

	s.logger.Info("Report deleted", "report_id", id, "actor_id", actor.ID)
	return nil
}

// ===== HELPERS =====

func (s *reportService) checkReportAccess(report *models.Report, actor *models.User) error {
	if actor.Role == models.RoleLecturer && report.Course.LecturerID != actor.ID {
		return NewPermissionError(actor.ID, report.ID, "report", "view", "report belongs to another lecturer")
	}
	return nil
}

func (s *reportService) invalidateReportCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, reportCachePattern); err != nil {
		s.logger.Debug("Report cache invalidation failed", "error", err)
	}
}

// checkSpreadsheetName accepts only Excel workbook extensions.
func checkSpreadsheetName(fileName string) error {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return nil
	default:
		return ErrUnsupportedFileType
	}
}
