package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hkr-team/assessment-engine/internal/services"
	"github.com/hkr-team/assessment-engine/internal/session"
	"github.com/hkr-team/assessment-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionService scripts per-call results for handler tests.
type fakeSessionService struct {
	snapshot    *services.SessionSnapshot
	identifyErr error
	beginErr    error
	answerErr   error
	navigateErr error
	submitErr   error

	lastAnswer struct {
		questionID string
		value      any
	}
}

func (f *fakeSessionService) Open(_ context.Context, token string) (*session.Session, error) {
	return nil, nil
}

func (f *fakeSessionService) Identify(_ context.Context, _, _, _ string) error {
	return f.identifyErr
}

func (f *fakeSessionService) Begin(_ context.Context, _ string) error {
	return f.beginErr
}

func (f *fakeSessionService) Answer(_ context.Context, _, questionID string, raw any) error {
	f.lastAnswer.questionID = questionID
	f.lastAnswer.value = raw
	return f.answerErr
}

func (f *fakeSessionService) Navigate(_ context.Context, _ string, _ int) error {
	return f.navigateErr
}

func (f *fakeSessionService) Submit(_ context.Context, _ string, _ bool) error {
	return f.submitErr
}

func (f *fakeSessionService) Snapshot(_ context.Context, token string) (*services.SessionSnapshot, error) {
	if f.snapshot != nil {
		return f.snapshot, nil
	}
	return &services.SessionSnapshot{Token: token, Phase: session.PhaseIdentify}, nil
}

func (f *fakeSessionService) Close() {}

type fakeReportingService struct {
	report *services.ReportResponse
	err    error
}

func (f *fakeReportingService) Report(_ context.Context, _ string) (*services.ReportResponse, error) {
	return f.report, f.err
}

func (f *fakeReportingService) ExportXLSX(_ context.Context, _ string, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("PK"))
	return err
}

func newTestRouter(sessionSvc services.SessionService, reportingSvc services.ReportingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hm := NewHandlerManager(sessionSvc, reportingSvc, utils.NewValidator(), logger)
	router := gin.New()
	hm.SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSessionHandler_OpenSession(t *testing.T) {
	router := newTestRouter(&fakeSessionService{}, &fakeReportingService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/tok-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tok-1", data["token"])
	assert.Equal(t, "identify", data["phase"])
}

func TestSessionHandler_IdentifyValidation(t *testing.T) {
	router := newTestRouter(&fakeSessionService{}, &fakeReportingService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/tok-1/identify", gin.H{
		"name":  "Dana",
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Validation failures carry the structured field errors, not a raw
	// error string.
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details, ok := resp.Details.([]any)
	require.True(t, ok, "details should be a list of field errors, got %T", resp.Details)
	require.Len(t, details, 1)
	fieldErr, ok := details[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email", fieldErr["field"])
	assert.Equal(t, "must be a valid email address", fieldErr["message"])
	assert.Equal(t, "email", fieldErr["rule"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/tok-1/identify", gin.H{
		"name":  "Dana",
		"email": "dana@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandler_SetAnswerPassesValue(t *testing.T) {
	svc := &fakeSessionService{}
	router := newTestRouter(svc, &fakeReportingService{})

	w := doJSON(t, router, http.MethodPut, "/api/v1/sessions/tok-1/answers/q2", gin.H{
		"value": "go",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "q2", svc.lastAnswer.questionID)
	assert.Equal(t, "go", svc.lastAnswer.value)
}

func TestSessionHandler_SubmitConfirmationConflict(t *testing.T) {
	svc := &fakeSessionService{submitErr: session.ErrConfirmationRequired}
	router := newTestRouter(svc, &fakeReportingService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/tok-1/submit", gin.H{
		"confirmed": false,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmation_required", resp.Code)
}

func TestSessionHandler_PhaseConflict(t *testing.T) {
	svc := &fakeSessionService{beginErr: session.ErrInvalidPhase}
	router := newTestRouter(svc, &fakeReportingService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/tok-1/begin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandler_GetReport(t *testing.T) {
	reporting := &fakeReportingService{report: &services.ReportResponse{
		Token:           "tok-1",
		AssessmentTitle: "Backend Screen",
		Score:           67,
		Percentile:      50,
		PercentileLabel: "Above Average",
	}}
	router := newTestRouter(&fakeSessionService{}, reporting)

	w := doJSON(t, router, http.MethodGet, "/api/v1/reports/tok-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(67), data["score"])
	assert.Equal(t, "Above Average", data["percentile_label"])
}

func TestReportHandler_NotCompleted(t *testing.T) {
	reporting := &fakeReportingService{err: services.ErrSubmissionNotCompleted}
	router := newTestRouter(&fakeSessionService{}, reporting)

	w := doJSON(t, router, http.MethodGet, "/api/v1/reports/tok-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandler_Export(t *testing.T) {
	router := newTestRouter(&fakeSessionService{}, &fakeReportingService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/reports/tok-1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Equal(t, "PK", w.Body.String())
}
