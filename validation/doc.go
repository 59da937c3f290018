// Package validation checks plans and configuration before they are used.
//
// Struct tags cover the static shape, using the yaml field names in messages:
//
//	type Step struct {
//	    Op string `yaml:"op" validate:"required,oneof=map filter take"`
//	}
//	err := validation.Validate(step)
//
// Rules that depend on other fields are written with a Validator, which
// collects every failure before reporting:
//
//	v := validation.New().At("steps[0]")
//	v.Required("func", step.Func).Regexp("arg", step.Arg)
//	err := v.Err()
//
// Both report an INVALID_INPUT AppError whose "fields" detail lists each
// FieldError.
package validation
