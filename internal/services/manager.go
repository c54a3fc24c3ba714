package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quality-service/internal/analysis"
	"github.com/SAP-F-2025/quality-service/internal/cache"
	"github.com/SAP-F-2025/quality-service/internal/events"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"github.com/SAP-F-2025/quality-service/internal/validator"
)

// ServiceManager aggregates all domain services behind one constructor so the
// wiring in main stays flat.
type ServiceManager interface {
	User() UserService
	Course() CourseService
	Exam() ExamService
	Report() ReportService
	Outcome() OutcomeService
	Template() TemplateService
}

type serviceManager struct {
	user     UserService
	course   CourseService
	exam     ExamService
	report   ReportService
	outcome  OutcomeService
	template TemplateService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analyzer *analysis.Analyzer,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) ServiceManager {
	outcome := NewOutcomeService(repo, logger, publisher)

	return &serviceManager{
		user:     NewUserService(repo, logger, validator),
		course:   NewCourseService(repo, logger, validator, cacheService),
		exam:     NewExamService(repo, logger, validator, outcome),
		report:   NewReportService(repo, logger, validator, analyzer, publisher, cacheService),
		outcome:  outcome,
		template: NewTemplateService(logger),
	}
}

func (m *serviceManager) User() UserService         { return m.user }
func (m *serviceManager) Course() CourseService     { return m.course }
func (m *serviceManager) Exam() ExamService         { return m.exam }
func (m *serviceManager) Report() ReportService     { return m.report }
func (m *serviceManager) Outcome() OutcomeService   { return m.outcome }
func (m *serviceManager) Template() TemplateService { return m.template }
