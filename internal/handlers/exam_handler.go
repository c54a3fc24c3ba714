package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// CreateExam creates an exam with its question layout
// @Summary Create exam
// @Description Creates an exam with its questions and optional outcome mappings
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating exam", "course_id", req.CourseID, "type", req.Type)

	exam, err := h.examService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// GetExam returns one exam with questions
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ListExams lists the exams of a course
// @Summary List exams
// @Tags exams
// @Produce json
// @Param course_id query uint true "Course ID"
// @Success 200 {array} models.Exam
// @Failure 400 {object} ErrorResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32)
	if err != nil || courseID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid course_id",
			Details: "must be a positive integer",
		})
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), uint(courseID), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exams)
}

// UpdateExamQuestions records grading results and outcome mappings
// @Summary Update exam questions
// @Description Stores class averages and outcome mappings for exam questions, then recomputes outcome achievement
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param questions body services.UpdateQuestionsRequest true "Question updates"
// @Success 200 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/questions [put]
func (h *ExamHandler) UpdateExamQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.UpdateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating exam questions", "exam_id", id, "questions", len(req.Questions))

	exam, err := h.examService.UpdateQuestions(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam removes an exam and its questions
// @Summary Delete exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Exam deleted"})
}
