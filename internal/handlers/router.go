package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/hkr-team/assessment-engine/internal/services"
	"github.com/hkr-team/assessment-engine/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	reportHandler  *ReportHandler
}

func NewHandlerManager(
	sessionService services.SessionService,
	reportingService services.ReportingService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(sessionService, validator, logger),
		reportHandler:  NewReportHandler(reportingService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "assessment-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/:token", hm.sessionHandler.OpenSession)
			sessions.GET("/:token", hm.sessionHandler.GetSession)
			sessions.POST("/:token/identify", hm.sessionHandler.Identify)
			sessions.POST("/:token/begin", hm.sessionHandler.Begin)
			sessions.PUT("/:token/answers/:question_id", hm.sessionHandler.SetAnswer)
			sessions.POST("/:token/navigate", hm.sessionHandler.Navigate)
			sessions.POST("/:token/submit", hm.sessionHandler.Submit)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:token", hm.reportHandler.GetReport)
			reports.GET("/:token/export", hm.reportHandler.ExportReport)
		}
	}
}
