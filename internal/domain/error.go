package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeUpstreamRequest  ErrorCode = "UPSTREAM_REQUEST"
	CodeUpstreamRejected ErrorCode = "UPSTREAM_REJECTED"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeInternal         ErrorCode = "INTERNAL"
)

var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDuplicateTool     = errors.New("duplicate tool name")
	ErrMissingConfig     = errors.New("missing required configuration")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// Error carries a classified failure. Message is the text surfaced to
// callers inside result envelopes, so it never contains the op prefix.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	// Status is the upstream HTTP status when one was received.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// Wrap classifies err under code unless it already carries a code, in
// which case the existing classification wins and only op is filled in.
func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Status:  existing.Status,
			Cause:   existing.Cause,
		}
	}
	return E(code, op, "", err)
}

// Prefix returns a copy of err whose message is prefixed with context,
// keeping the code and upstream status of the original.
func Prefix(op, context string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: context + ": " + MessageOf(existing),
			Status:  existing.Status,
			Cause:   err,
		}
	}
	return E(CodeUpstreamRequest, op, context+": "+err.Error(), err)
}

// MessageOf returns the caller-facing text for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		if domainErr.Message != "" {
			return domainErr.Message
		}
		if domainErr.Cause != nil {
			return domainErr.Cause.Error()
		}
		return string(domainErr.Code)
	}
	return err.Error()
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrToolNotFound), errors.Is(err, ErrCustomerNotFound):
		return CodeNotFound, true
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrMissingConfig):
		return CodeInvalidConfig, true
	case errors.Is(err, ErrMalformedResponse):
		return CodeUpstreamRejected, true
	case errors.Is(err, ErrDuplicateTool):
		return CodeInternal, true
	default:
		return "", false
	}
}
