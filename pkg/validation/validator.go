// Package validation checks user-supplied names and edit requests before
// they reach the graph registry.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength        = 64
	MaxDisplayNameLength = 128
)

var (
	validate = newValidator()

	// Names are lookup keys and are joined with "_" for group forward
	// ports, so they stay identifier-like.
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("graphname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	return v
}

// NodeRequest describes a node to create.
type NodeRequest struct {
	Name        string `json:"name" validate:"required,max=64,graphname"`
	DisplayName string `json:"displayName" validate:"omitempty,max=128"`
}

// PortRequest describes a port to add to an existing node or group.
type PortRequest struct {
	Owner       string   `json:"owner" validate:"required,max=64"`
	Name        string   `json:"name" validate:"required,max=64,graphname"`
	Orientation string   `json:"orientation" validate:"required,oneof=input output parameter in out param i o p"`
	Tags        []string `json:"tags" validate:"omitempty,max=64,dive,required,max=64"`
}

func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}
	return formatValidationError(validate.Struct(req))
}

// ValidatePortRequest also rejects a tag listed twice.
func ValidatePortRequest(req *PortRequest) error {
	if req == nil {
		return errors.New("port request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	seen := make(map[string]struct{}, len(req.Tags))
	for _, tag := range req.Tags {
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("Tags: duplicate tag '%s'", tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// ValidateName checks a node, port or tag name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("name cannot be empty")
	case len(name) > MaxNameLength:
		return fmt.Errorf("name '%s' exceeds maximum length of %d characters", name, MaxNameLength)
	case !namePattern.MatchString(name):
		return fmt.Errorf("name '%s' contains invalid characters (only alphanumeric, '_', '.' and '-' allowed)", name)
	}
	return nil
}

// formatValidationError reports the first failed field in plain words.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	e := verrs[0]
	field, param := e.Field(), e.Param()
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "max":
		return fmt.Errorf("%s: must not exceed %s", field, param)
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s]", field, param)
	case "graphname":
		return fmt.Errorf("%s: contains invalid characters (only alphanumeric, '_', '.' and '-' allowed)", field)
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}
