package services

import (
	"errors"

	apperrors "github.com/hkr-team/assessment-engine/internal/errors"
)

var (
	// Generic errors
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")

	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// Reporting errors
	ErrSubmissionNotCompleted = errors.New("submission is not completed")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
