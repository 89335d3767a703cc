package util

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidInput
	KindUnauthorized
	KindUnauthenticated
	KindConflict
	KindUpstream
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream_service_error"
	case KindPersistence:
		return "persistence_error"
	}
	return "internal"
}

// AppError carries a taxonomy kind and a machine readable code to the HTTP
// layer. Message is safe to show to clients; Err is only logged.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on kind and code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func NewNotFound(code, msg string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: msg}
}

func NewInvalidInput(code, msg string) *AppError {
	return &AppError{Kind: KindInvalidInput, Code: code, Message: msg}
}

func NewUnauthorized(code, msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: msg}
}

func NewConflict(code, msg string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: msg}
}

func NewUpstream(code, msg string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Code: code, Message: msg, Err: err}
}

func NewPersistence(err error) *AppError {
	return &AppError{Kind: KindPersistence, Code: "PERSISTENCE_ERROR", Message: "storage operation failed", Err: err}
}

func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound      = NewNotFound("USER_NOT_FOUND", "user not found")
	ErrEmailRegistered   = NewConflict("EMAIL_REGISTERED", "email is already registered")
	ErrInvalidLogin      = &AppError{Kind: KindUnauthenticated, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
	ErrPermissionDenied  = NewUnauthorized("NOT_OWNER", "you do not own this resource")
	ErrGoalNotFound      = NewNotFound("GOAL_NOT_FOUND", "goal not found")
	ErrParentNotFound    = NewNotFound("PARENT_NOT_FOUND", "parent goal not found")
	ErrParentNotMain     = NewInvalidInput("PARENT_NOT_MAIN", "sub goals can only be attached to a main goal")
	ErrInvalidWeight     = NewInvalidInput("INVALID_WEIGHT", "weight must be greater than 0")
	ErrInvalidCategory   = NewInvalidInput("INVALID_CATEGORY", "unknown goal category")
	ErrInvalidPriority   = NewInvalidInput("INVALID_PRIORITY", "unknown goal priority")
	ErrInvalidStatus     = NewInvalidInput("INVALID_STATUS", "unknown status")
	ErrSessionNotFound   = NewNotFound("SESSION_NOT_FOUND", "coaching session not found")
	ErrInvalidSession    = NewInvalidInput("INVALID_SESSION_TYPE", "unknown session type")
	ErrTemplateNotFound  = NewNotFound("TEMPLATE_NOT_FOUND", "assessment template not found")
	ErrAssessmentMissing = NewNotFound("ASSESSMENT_NOT_FOUND", "assessment not found")
	ErrAlreadySubmitted  = NewConflict("ASSESSMENT_SUBMITTED", "assessment has already been submitted")
	ErrMissingAPIKey     = NewUpstream("MISSING_API_KEY", "AI service is not configured", nil)
	ErrAIService         = NewUpstream("AI_SERVICE_ERROR", "AI service is unavailable", nil)
)

// InvalidAnswer wraps a per-question validation failure.
func InvalidAnswer(err error) *AppError {
	return &AppError{Kind: KindInvalidInput, Code: "INVALID_ANSWER", Message: err.Error(), Err: err}
}

// Upstream wraps a failure of the AI provider as AI_SERVICE_ERROR.
func Upstream(err error) *AppError {
	return NewUpstream(ErrAIService.Code, ErrAIService.Message, err)
}
