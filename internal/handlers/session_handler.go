package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/hkr-team/assessment-engine/internal/errors"
	"github.com/hkr-team/assessment-engine/internal/services"
	"github.com/hkr-team/assessment-engine/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *utils.Validator
}

type IdentifyRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type AnswerRequest struct {
	Value any `json:"value"`
}

type NavigateRequest struct {
	Index int `json:"index" validate:"min=0"`
}

type SubmitRequest struct {
	Confirmed bool `json:"confirmed"`
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// OpenSession resolves a token and returns the session state
// @Summary Open session
// @Description Resolves a session token, creating the live session on first access
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} SuccessResponse{data=services.SessionSnapshot}
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{token} [post]
func (h *SessionHandler) OpenSession(c *gin.Context) {
	token := c.Param("token")
	h.LogRequest(c, "Opening session", "token", token)

	snap, err := h.sessionService.Snapshot(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Session opened", snap)
}

// GetSession returns the current session state
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} SuccessResponse{data=services.SessionSnapshot}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{token} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	snap, err := h.sessionService.Snapshot(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Session state", snap)
}

// Identify confirms the candidate's identity
// @Summary Identify candidate
// @Description Confirms name and email and moves the session to the welcome phase
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param identity body IdentifyRequest true "Candidate identity"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/identify [post]
func (h *SessionHandler) Identify(c *gin.Context) {
	token := c.Param("token")

	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: apperrors.ToValidationErrors(err),
		})
		return
	}

	if err := h.sessionService.Identify(c.Request.Context(), token, req.Name, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Candidate identified", nil)
}

// Begin starts the timed attempt
// @Summary Begin attempt
// @Description Starts the countdown and places the candidate on the first question
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} SuccessResponse{data=services.SessionSnapshot}
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/begin [post]
func (h *SessionHandler) Begin(c *gin.Context) {
	token := c.Param("token")
	h.LogRequest(c, "Beginning attempt", "token", token)

	if err := h.sessionService.Begin(c.Request.Context(), token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	snap, err := h.sessionService.Snapshot(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Attempt started", snap)
}

// SetAnswer records the candidate's answer for one question
// @Summary Record answer
// @Description Stores the current answer for a question; later writes overwrite earlier ones
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param question_id path string true "Question ID"
// @Param answer body AnswerRequest true "Answer value"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/answers/{question_id} [put]
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	token := c.Param("token")
	questionID := c.Param("question_id")

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessionService.Answer(c.Request.Context(), token, questionID, req.Value); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answer recorded", nil)
}

// Navigate moves the candidate to another question
// @Summary Navigate
// @Description Moves to a question by flat index; recorded answers are untouched
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param navigation body NavigateRequest true "Target index"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{token}/navigate [post]
func (h *SessionHandler) Navigate(c *gin.Context) {
	token := c.Param("token")

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessionService.Navigate(c.Request.Context(), token, req.Index); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Navigated", nil)
}

// Submit closes the attempt on the candidate's request
// @Summary Submit attempt
// @Description Ends the attempt; unanswered questions require an explicit confirmation
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param submission body SubmitRequest true "Submission confirmation"
// @Success 200 {object} SuccessResponse{data=services.SessionSnapshot}
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	token := c.Param("token")
	h.LogRequest(c, "Submitting attempt", "token", token)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessionService.Submit(c.Request.Context(), token, req.Confirmed); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	snap, err := h.sessionService.Snapshot(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Attempt submitted", snap)
}
