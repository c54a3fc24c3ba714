package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware is implemented by the auth package; the indirection keeps
// this package free of identity provider imports.
type AuthMiddleware interface {
	Authenticate() gin.HandlerFunc
	RequireRoles(roles ...models.UserRole) gin.HandlerFunc
}

type HandlerManager struct {
	reportHandler   *ReportHandler
	examHandler     *ExamHandler
	courseHandler   *CourseHandler
	userHandler     *UserHandler
	templateHandler *TemplateHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		reportHandler:   NewReportHandler(serviceManager.Report(), logger),
		examHandler:     NewExamHandler(serviceManager.Exam(), logger),
		courseHandler:   NewCourseHandler(serviceManager.Course(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		templateHandler: NewTemplateHandler(serviceManager.Template(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth AuthMiddleware) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quality-service",
		})
	})

	// API v1 routes, all behind authentication
	v1 := router.Group("/api/v1")
	v1.Use(auth.Authenticate())
	{
		v1.GET("/me", hm.userHandler.GetCurrentUser)

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.POST("/analyze", hm.reportHandler.AnalyzeGradeSheet)
			reports.POST("", hm.reportHandler.CreateReport)
			reports.GET("", hm.reportHandler.ListReports)
			reports.GET("/:id", hm.reportHandler.GetReport)
			reports.PATCH("/:id/status",
				auth.RequireRoles(models.RoleAdmin, models.RoleManager),
				hm.reportHandler.ReviewReport)
			reports.DELETE("/:id",
				auth.RequireRoles(models.RoleAdmin),
				hm.reportHandler.DeleteReport)
		}

		// Course and learning outcome routes
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.DELETE("/:id",
				auth.RequireRoles(models.RoleAdmin),
				hm.courseHandler.DeleteCourse)

			courses.POST("/:id/outcomes", hm.courseHandler.CreateOutcome)
			courses.GET("/:id/outcomes", hm.courseHandler.ListOutcomes)
			courses.DELETE("/:id/outcomes/:outcome_id", hm.courseHandler.DeleteOutcome)
		}

		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.PUT("/:id/questions", hm.examHandler.UpdateExamQuestions)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
		}

		// Whitelist account routes
		users := v1.Group("/users")
		{
			users.POST("", auth.RequireRoles(models.RoleAdmin), hm.userHandler.CreateUser)
			users.GET("", auth.RequireRoles(models.RoleAdmin, models.RoleManager), hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", auth.RequireRoles(models.RoleAdmin), hm.userHandler.UpdateUser)
			users.DELETE("/:id", auth.RequireRoles(models.RoleAdmin), hm.userHandler.DeleteUser)
		}

		// Template downloads
		templates := v1.Group("/templates")
		{
			templates.GET("/grades", hm.templateHandler.DownloadGradeTemplate)
			templates.GET("/outcomes", hm.templateHandler.DownloadOutcomeTemplate)
		}
	}
}
