package backtest

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means no bars exist for the symbol or requested range.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrMalformedData means the bar series violates its ordering contract.
	ErrMalformedData = errors.New("malformed bar data")
	// ErrInsufficientCapital means the lot size computed to zero or less.
	ErrInsufficientCapital = errors.New("insufficient capital for lot")
	// ErrMissingExitPrice means the period's last day had no usable close.
	ErrMissingExitPrice = errors.New("missing exit price")
	// ErrConfigurationInvalid rejects a strategy before simulation starts.
	ErrConfigurationInvalid = errors.New("configuration invalid")
)

// ConfigError describes which strategy field failed validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfigurationInvalid.Error(), e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigurationInvalid
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
