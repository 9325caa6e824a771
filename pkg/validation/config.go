package validation

import (
	"errors"
	"fmt"
	"time"
)

// ConfigValidator collects cross-field configuration failures. Each check
// records an error and returns the validator so calls can be chained.
type ConfigValidator struct {
	name   string
	errors []error
}

func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: "+format, append([]any{cv.name, field}, args...)...))
}

// Required fails on an empty string.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, "required field is empty")
	}
	return cv
}

// RangeDuration fails unless min <= value <= max.
func (cv *ConfigValidator) RangeDuration(field string, value, min, max time.Duration) *ConfigValidator {
	if value < min || value > max {
		cv.fail(field, "duration %v is outside range [%v, %v]", value, min, max)
	}
	return cv
}

// Custom records whatever fn returns.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When runs validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns nil, the single failure, or every failure joined.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	}
	return fmt.Errorf("%s validation failed with %d errors: %w", cv.name, len(cv.errors), errors.Join(cv.errors...))
}

type Validatable interface {
	Validate() error
}

func ValidateConfig(config Validatable) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

// DefaultOr returns value unless it is the zero value.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
