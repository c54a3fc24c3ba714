package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TemplateHandler struct {
	BaseHandler
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService, logger utils.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger),
		templateService: templateService,
	}
}

// DownloadGradeTemplate streams a grade entry workbook
// @Summary Download grade template
// @Description Returns an Excel template for grade entry. type selects vize, final, butunleme or the general layout.
// @Tags templates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string false "vize, final, butunleme or general"
// @Param course query string false "Course code"
// @Param name query string false "Course name"
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /templates/grades [get]
func (h *TemplateHandler) DownloadGradeTemplate(c *gin.Context) {
	examType := c.DefaultQuery("type", "general")
	courseCode := c.Query("course")
	courseName := c.Query("name")

	h.LogRequest(c, "Generating grade template", "exam_type", examType, "course", courseCode)

	data, fileName, err := h.templateService.GradeTemplate(examType, courseCode, courseName)
	if err != nil {
		h.LogError(c, err, "Grade template generation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Taslak oluşturulamadı",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DownloadOutcomeTemplate streams the learning outcome bulk upload workbook
// @Summary Download outcome template
// @Description Returns the DÖÇ bulk upload Excel template
// @Tags templates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /templates/outcomes [get]
func (h *TemplateHandler) DownloadOutcomeTemplate(c *gin.Context) {
	h.LogRequest(c, "Generating outcome template")

	data, fileName, err := h.templateService.OutcomeTemplate()
	if err != nil {
		h.LogError(c, err, "Outcome template generation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Taslak oluşturulamadı",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}
