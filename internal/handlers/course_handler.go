package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating course", "code", req.Code)

	course, err := h.courseService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses lists courses visible to the caller
// @Summary List courses
// @Description Lecturers get their own courses, other roles get the full catalog
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	courses, err := h.courseService.List(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourse returns one course
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course
// @Summary Delete course
// @Description Deletes a course. Admin only.
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

// ===== LEARNING OUTCOMES =====

// CreateOutcome adds a learning outcome to a course
// @Summary Create learning outcome
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param outcome body services.CreateOutcomeRequest true "Outcome data"
// @Success 201 {object} models.LearningOutcome
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/outcomes [post]
func (h *CourseHandler) CreateOutcome(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.CreateOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating learning outcome", "course_id", id, "code", req.Code)

	outcome, err := h.courseService.CreateOutcome(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

// ListOutcomes lists the learning outcomes of a course with achievements
// @Summary List learning outcomes
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.LearningOutcome
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/outcomes [get]
func (h *CourseHandler) ListOutcomes(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	outcomes, err := h.courseService.ListOutcomes(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcomes)
}

// DeleteOutcome removes a learning outcome
// @Summary Delete learning outcome
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Param outcome_id path uint true "Outcome ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/outcomes/{outcome_id} [delete]
func (h *CourseHandler) DeleteOutcome(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	outcomeID := h.parseIDParam(c, "outcome_id")
	if outcomeID == 0 {
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	if err := h.courseService.DeleteOutcome(c.Request.Context(), id, outcomeID, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Learning outcome deleted"})
}
