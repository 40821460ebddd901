package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoBackends means the orchestrator was constructed with an empty registry.
var ErrNoBackends = errors.New("no llm backends configured")

// ErrToolUnavailable marks an external binary missing from the environment.
var ErrToolUnavailable = errors.New("external tool not installed")

// ErrToolTimeout marks an external invocation that hit its deadline.
var ErrToolTimeout = errors.New("external tool timed out")

// ConfigError is a fatal misconfiguration of a single backend. It fails that
// backend at startup without taking down the rest of the service.
type ConfigError struct {
	Backend string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("backend %s: invalid configuration: %s", e.Backend, e.Reason)
}

// MalformedResponseError means a backend answered but the reply did not
// contain the expected JSON object. Raw carries the full response text for
// diagnostics; it is never fabricated into data.
type MalformedResponseError struct {
	Backend string
	Raw     string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("backend %s: malformed response: %v", e.Backend, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// BackendAttempt records one failed backend try during failover.
type BackendAttempt struct {
	Backend string `json:"backend"`
	Err     string `json:"error"`
}

// BackendsExhaustedError is returned when the primary and every fallback
// failed. Attempts lists each backend exactly once, in the order tried.
type BackendsExhaustedError struct {
	Operation string
	Attempts  []BackendAttempt
}

func (e *BackendsExhaustedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Backend
	}
	return fmt.Sprintf("%s: all llm backends failed (tried %s)", e.Operation, strings.Join(names, ", "))
}
