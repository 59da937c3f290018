package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/lazyseq/errors"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Validator collects field errors. Scoped validators created with At share
// the error list of their parent.
type Validator struct {
	errs   *[]FieldError
	prefix string
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{errs: new([]FieldError)}
}

// At returns a validator whose field names are prefixed with path.
func (v *Validator) At(path string) *Validator {
	return &Validator{errs: v.errs, prefix: v.path(path)}
}

func (v *Validator) path(field string) string {
	switch {
	case v.prefix == "":
		return field
	case field == "":
		return v.prefix
	default:
		return v.prefix + "." + field
	}
}

// AddError records message against field.
func (v *Validator) AddError(field, message string) {
	*v.errs = append(*v.errs, FieldError{Field: v.path(field), Message: message})
}

// HasErrors reports whether any rule failed.
func (v *Validator) HasErrors() bool {
	return len(*v.errs) > 0
}

// Errors returns the collected errors in the order they were added.
func (v *Validator) Errors() []FieldError {
	return slices.Clone(*v.errs)
}

// Err returns nil, or an INVALID_INPUT AppError listing every field error.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	errs := v.Errors()
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", errs)
}

// Required fails when value is blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Empty fails when value is set; used for arguments an operation does not take.
func (v *Validator) Empty(field, value string) *Validator {
	if value != "" {
		v.AddError(field, "is not allowed here")
	}
	return v
}

// Min fails when value < minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// OneOf fails when value is set and not in allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Regexp fails when value is not a valid regular expression.
func (v *Validator) Regexp(field, value string) *Validator {
	if _, err := regexp.Compile(value); err != nil {
		v.AddError(field, "must be a valid regular expression")
	}
	return v
}

// OptionalUUID fails when value is set and not a UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := uuid.Parse(value); err != nil {
		v.AddError(field, "must be a valid UUID")
	}
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
