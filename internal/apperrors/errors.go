// Package apperrors holds the error taxonomy shared by adolog components.
// Typed errors carry details for callers and match their sentinel via errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthCodeMissing      = errors.New("authorization code not found in redirect URL")
	ErrAuthStateMismatch    = errors.New("authorization state does not match")
	ErrTokenExchangeFailed  = errors.New("token exchange failed")
	ErrGateway              = errors.New("time log backend request failed")
	ErrCapacityExceeded     = errors.New("daily time limit exceeded")
	ErrConfigurationMissing = errors.New("required setting is missing")
	ErrInvalidRecord        = errors.New("time log record is invalid")
)

// TokenExchangeError is returned when the token endpoint answers with a
// non-successful status.
type TokenExchangeError struct {
	HTTPStatus    int
	ProviderError string
	Description   string
}

func (e *TokenExchangeError) Error() string {
	msg := fmt.Sprintf("token exchange failed: status %d", e.HTTPStatus)
	if e.ProviderError != "" {
		msg += ": " + e.ProviderError
	}
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	return msg
}

func (e *TokenExchangeError) Is(target error) bool { return target == ErrTokenExchangeFailed }

// GatewayError describes a failed backend call. HTTPStatus is zero for
// transport errors.
type GatewayError struct {
	Operation  string
	HTTPStatus int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Operation, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

func (e *GatewayError) Unwrap() error { return e.Err }

// CapacityError rejects a write that would push a day over the cap.
type CapacityError struct {
	Date             string
	RequestedMinutes int
	RemainingMinutes int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("daily time limit exceeded on %s: requested %d min, %d min left",
		e.Date, e.RequestedMinutes, e.RemainingMinutes)
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// ConfigError names the setting that is absent or unusable.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration missing: %s (%s)", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration missing: %s", e.Setting)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfigurationMissing }

// MissingSetting is a shorthand for a ConfigError without a reason.
func MissingSetting(name string) error {
	return &ConfigError{Setting: name}
}
