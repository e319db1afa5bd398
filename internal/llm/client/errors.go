package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies a gateway failure so the orchestrator can decide
// between retrying and giving up.
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport"
	KindTimeout        ErrorKind = "timeout"
	KindQuotaExceeded  ErrorKind = "quotaExceeded"
	KindInvalidRequest ErrorKind = "invalidRequest"
	KindModelError     ErrorKind = "modelError"
)

// GatewayError wraps an upstream failure with its classification.
type GatewayError struct {
	Kind ErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("llm gateway %s: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Retryable reports whether the orchestrator should retry this failure.
// Quota and invalid-request refusals are final.
func (e *GatewayError) Retryable() bool {
	return e.Kind == KindTransport || e.Kind == KindTimeout || e.Kind == KindModelError
}

// classify maps an upstream error onto an ErrorKind. Provider SDKs do not
// share an error taxonomy, so this falls back to message sniffing for the
// status codes that matter.
func classify(err error) *GatewayError {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &GatewayError{Kind: KindTimeout, Err: err}
		}
		return &GatewayError{Kind: KindTransport, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "quota"), strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "rate limit"):
		return &GatewayError{Kind: KindQuotaExceeded, Err: err}
	case strings.Contains(msg, "400"), strings.Contains(msg, "invalid argument"), strings.Contains(msg, "invalid request"), strings.Contains(msg, "api key"):
		return &GatewayError{Kind: KindInvalidRequest, Err: err}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return &GatewayError{Kind: KindTimeout, Err: err}
	case strings.Contains(msg, "connection"), strings.Contains(msg, "no such host"), strings.Contains(msg, "unavailable"), strings.Contains(msg, "503"):
		return &GatewayError{Kind: KindTransport, Err: err}
	default:
		return &GatewayError{Kind: KindModelError, Err: err}
	}
}
