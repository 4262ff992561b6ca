// Package validation provides input validation for authkit configuration
// and request data.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Configuration structs use
// struct tags; guard construction uses the fluent form.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    IssuerURL string `validate:"required,url"`
//	    ClientID  string `validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("issuer_url", cfg.IssuerURL)
//	v.OneOf("mode", string(mode), []string{"any", "all"})
//	err := v.Validate()
//
// Both forms return an *errors.AppError with INVALID_INPUT and per-field
// details.
package validation
