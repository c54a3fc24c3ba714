package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quality-service/internal/analysis"
	"github.com/SAP-F-2025/quality-service/internal/cache"
	"github.com/SAP-F-2025/quality-service/internal/events"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"github.com/SAP-F-2025/quality-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ===== STUBS =====

type stubReportRepo struct {
	repositories.ReportRepository
	reports     map[uint]*models.Report
	nextID      uint
	lastFilters repositories.ReportFilters
	course      *models.Course
}

func newStubReportRepo(course *models.Course) *stubReportRepo {
	return &stubReportRepo{reports: make(map[uint]*models.Report), nextID: 1, course: course}
}

func (s *stubReportRepo) Create(ctx context.Context, report *models.Report) error {
	report.ID = s.nextID
	s.nextID++
	s.reports[report.ID] = report
	return nil
}

func (s *stubReportRepo) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s.course != nil {
		report.Course = *s.course
	}
	return report, nil
}

func (s *stubReportRepo) List(ctx context.Context, filters repositories.ReportFilters) ([]*models.Report, error) {
	s.lastFilters = filters
	out := make([]*models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubReportRepo) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reviewerID uint) (*models.Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now()
	report.Status = status
	report.ReviewerID = &reviewerID
	report.ReviewedAt = &now
	return s.GetByID(ctx, id)
}

func (s *stubReportRepo) Delete(ctx context.Context, id uint) error {
	delete(s.reports, id)
	return nil
}

type noopCache struct{}

func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (noopCache) Delete(ctx context.Context, key string) error      { return nil }
func (noopCache) DeletePattern(ctx context.Context, p string) error { return nil }

// gradeWorkbook builds an xlsx with a "Not" column holding the given scores.
func gradeWorkbook(t *testing.T, scores []interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), "Notlar")
	require.NoError(t, f.SetSheetRow("Notlar", "A1", &[]interface{}{"Öğrenci No", "Not"}))
	for i, score := range scores {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Notlar", cell, &[]interface{}{i + 1, score}))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newReportTestService(t *testing.T, course *models.Course) (ReportService, *stubReportRepo, *events.MockEventPublisher) {
	t.Helper()
	logger := testLogger()
	reportRepo := newStubReportRepo(course)
	repo := &stubRepository{
		course: &stubCourseRepo{course: course},
		report: reportRepo,
	}
	publisher := events.NewMockEventPublisher(logger)
	service := NewReportService(repo, logger, validator.New(), analysis.NewAnalyzer(), publisher, noopCache{})
	return service, reportRepo, publisher
}

// ===== TESTS =====

func TestReportService_AnalyzeUpload_RejectsNonExcel(t *testing.T) {
	service, _, _ := newReportTestService(t, &models.Course{ID: 1, LecturerID: 2})

	_, err := service.AnalyzeUpload(context.Background(), "notlar.pdf", []byte("whatever"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = service.AnalyzeUpload(context.Background(), "notlar.csv", []byte("whatever"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestReportService_Create(t *testing.T) {
	course := &models.Course{ID: 1, Code: "BIL101", LecturerID: 2}
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}
	ctx := context.Background()

	t.Run("AnalyzesAndStoresPendingReport", func(t *testing.T) {
		service, repo, publisher := newReportTestService(t, course)

		req := &CreateReportRequest{
			CourseID: 1,
			Term:     "2024-2025 Güz",
			FileName: "notlar.xlsx",
			FileData: gradeWorkbook(t, []interface{}{80, 40}),
		}
		report, err := service.Create(ctx, req, lecturer)
		require.NoError(t, err)

		assert.Equal(t, models.ReportPending, report.Status)
		assert.Equal(t, 2, report.StudentCnt)
		assert.InDelta(t, 60.0, report.AvgScore, 1e-9)
		assert.InDelta(t, 40.0, report.MinScore, 1e-9)
		assert.InDelta(t, 80.0, report.MaxScore, 1e-9)
		require.NotNil(t, report.PassCount)
		assert.Equal(t, 1, *report.PassCount)
		assert.NotEmpty(t, report.GradeDistribution)
		require.NotNil(t, report.FileName)
		assert.Equal(t, "notlar.xlsx", *report.FileName)

		require.Len(t, repo.reports, 1)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventReportSubmitted, published[0].Type)
	})

	t.Run("RejectsForeignCourse", func(t *testing.T) {
		service, _, _ := newReportTestService(t, course)
		other := &models.User{ID: 9, Role: models.RoleLecturer}

		req := &CreateReportRequest{
			CourseID: 1,
			Term:     "2024-2025 Güz",
			FileName: "notlar.xlsx",
			FileData: gradeWorkbook(t, []interface{}{80}),
		}
		_, err := service.Create(ctx, req, other)
		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("RejectsSheetWithoutScores", func(t *testing.T) {
		service, _, _ := newReportTestService(t, course)

		req := &CreateReportRequest{
			CourseID: 1,
			Term:     "2024-2025 Güz",
			FileName: "notlar.xlsx",
			FileData: gradeWorkbook(t, []interface{}{"yok", 150}),
		}
		_, err := service.Create(ctx, req, lecturer)
		assert.ErrorIs(t, err, analysis.ErrNoValidScores)
	})
}

func TestReportService_List_ForcesLecturerFilter(t *testing.T) {
	course := &models.Course{ID: 1, Code: "BIL101", LecturerID: 2}
	service, repo, _ := newReportTestService(t, course)
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}

	_, err := service.List(context.Background(), &ListReportsRequest{}, lecturer)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilters.LecturerID)
	assert.Equal(t, uint(2), *repo.lastFilters.LecturerID)

	manager := &models.User{ID: 3, Role: models.RoleManager}
	_, err = service.List(context.Background(), &ListReportsRequest{}, manager)
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilters.LecturerID)
}

func TestReportService_Review(t *testing.T) {
	course := &models.Course{ID: 1, Code: "BIL101", LecturerID: 2}
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}
	manager := &models.User{ID: 3, Role: models.RoleManager}
	ctx := context.Background()

	newPending := func(t *testing.T) (ReportService, *stubReportRepo, *events.MockEventPublisher, uint) {
		service, repo, publisher := newReportTestService(t, course)
		req := &CreateReportRequest{
			CourseID: 1,
			Term:     "2024-2025 Güz",
			FileName: "notlar.xlsx",
			FileData: gradeWorkbook(t, []interface{}{80, 40}),
		}
		report, err := service.Create(ctx, req, lecturer)
		require.NoError(t, err)
		publisher.ClearEvents()
		return service, repo, publisher, report.ID
	}

	t.Run("ManagerApproves", func(t *testing.T) {
		service, _, publisher, id := newPending(t)

		report, err := service.Review(ctx, id, &ReviewReportRequest{Status: models.ReportApproved}, manager)
		require.NoError(t, err)
		assert.Equal(t, models.ReportApproved, report.Status)
		require.NotNil(t, report.ReviewerID)
		assert.Equal(t, uint(3), *report.ReviewerID)
		assert.NotNil(t, report.ReviewedAt)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventReportReviewed, published[0].Type)
	})

	t.Run("SecondReviewIsRejected", func(t *testing.T) {
		service, _, _, id := newPending(t)

		_, err := service.Review(ctx, id, &ReviewReportRequest{Status: models.ReportRejected}, manager)
		require.NoError(t, err)

		_, err = service.Review(ctx, id, &ReviewReportRequest{Status: models.ReportApproved}, manager)
		assert.ErrorIs(t, err, ErrReportAlreadyReviewed)
	})

	t.Run("LecturerCannotReview", func(t *testing.T) {
		service, _, _, id := newPending(t)

		_, err := service.Review(ctx, id, &ReviewReportRequest{Status: models.ReportApproved}, lecturer)
		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("PendingIsNotAReviewTarget", func(t *testing.T) {
		service, _, _, id := newPending(t)

		_, err := service.Review(ctx, id, &ReviewReportRequest{Status: models.ReportPending}, manager)
		assert.ErrorIs(t, err, ErrReportInvalidStatus)
	})
}

func TestReportService_Delete(t *testing.T) {
	course := &models.Course{ID: 1, Code: "BIL101", LecturerID: 2}
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	ctx := context.Background()

	service, repo, _ := newReportTestService(t, course)
	req := &CreateReportRequest{
		CourseID: 1,
		Term:     "2024-2025 Güz",
		FileName: "notlar.xlsx",
		FileData: gradeWorkbook(t, []interface{}{80}),
	}
	report, err := service.Create(ctx, req, lecturer)
	require.NoError(t, err)

	err = service.Delete(ctx, report.ID, lecturer)
	var pe *PermissionError
	assert.ErrorAs(t, err, &pe)
	assert.Len(t, repo.reports, 1)

	require.NoError(t, service.Delete(ctx, report.ID, admin))
	assert.Empty(t, repo.reports)
}
