package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hkr-team/assessment-engine/internal/services"
	"github.com/hkr-team/assessment-engine/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportingService services.ReportingService
}

func NewReportHandler(reportingService services.ReportingService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:      NewBaseHandler(logger),
		reportingService: reportingService,
	}
}

// GetReport returns the score report for a completed submission
// @Summary Get score report
// @Description Returns score, pass flag, percentile against peers, and a per-section breakdown
// @Tags reports
// @Produce json
// @Param token path string true "Submission token"
// @Success 200 {object} SuccessResponse{data=services.ReportResponse}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /reports/{token} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	token := c.Param("token")
	h.LogRequest(c, "Building score report", "token", token)

	report, err := h.reportingService.Report(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Score report", report)
}

// ExportReport streams the score report as an XLSX workbook
// @Summary Export score report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param token path string true "Submission token"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /reports/{token}/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	token := c.Param("token")
	h.LogRequest(c, "Exporting score report", "token", token)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "score-report-"+token+".xlsx"))

	if err := h.reportingService.ExportXLSX(c.Request.Context(), token, c.Writer); err != nil {
		h.HandleServiceError(c, err)
		return
	}
}
