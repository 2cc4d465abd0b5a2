package service

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited         = errors.New("language backend rate limited")
	ErrQuotaExhausted      = errors.New("language backend quota exhausted")
	ErrUpstreamUnavailable = errors.New("language backend unavailable")

	ErrEmptyUtterance  = errors.New("utterance is empty")
	ErrSessionClosed   = errors.New("search session closed")
	ErrSessionNotFound = errors.New("search session not found")
)

// FailureKind is the closed set of upstream failure classes a caller must tell apart
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRateLimited
	FailureQuotaExhausted
	FailureUnavailable
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureQuotaExhausted:
		return "quota_exhausted"
	case FailureUnavailable:
		return "unavailable"
	default:
		return "none"
	}
}

// UserMessage is the guidance shown to the user for this failure class
func (k FailureKind) UserMessage() string {
	switch k {
	case FailureRateLimited:
		return "I'm receiving a lot of requests right now. Please try again in a few seconds."
	case FailureQuotaExhausted:
		return "The property search assistant is currently unavailable. Please try again later."
	case FailureUnavailable:
		return "I couldn't reach the search assistant. Please try again."
	default:
		return ""
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureRateLimited:
		return ErrRateLimited
	case FailureQuotaExhausted:
		return ErrQuotaExhausted
	default:
		return ErrUpstreamUnavailable
	}
}

// UpstreamError is a classified failure of the language-understanding backend
type UpstreamError struct {
	Kind FailureKind
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so errors.Is(err, ErrRateLimited) works
func (e *UpstreamError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// FailureKindOf returns the upstream failure class carried by err, or FailureNone
func FailureKindOf(err error) FailureKind {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Kind
	}
	return FailureNone
}
