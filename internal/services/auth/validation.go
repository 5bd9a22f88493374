package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/atlasdash/internal/models"
)

// ValidationErrors carries field-scoped validation failures. Requests that
// fail validation never reach the network.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var tokenValidator = newTokenValidator()

func newTokenValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Atlassian cloud sites always live under *.atlassian.net
	_ = v.RegisterValidation("atlassian_domain", func(fl validator.FieldLevel) bool {
		return strings.Contains(fl.Field().String(), ".atlassian.net")
	})

	return v
}

// ValidateTokenRequest applies the client-side credential rules: domain must
// carry the Atlassian host suffix, email must be a plausible address, and the
// API token must meet the minimum length. Returns nil when the request is
// valid.
func ValidateTokenRequest(req models.APITokenRequest) ValidationErrors {
	err := tokenValidator.Struct(req)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{"request": err.Error()}
	}

	result := make(ValidationErrors, len(invalid))
	for _, fieldErr := range invalid {
		switch fieldErr.Field() {
		case "Domain":
			if fieldErr.Tag() == "required" {
				result["domain"] = "Domain is required"
			} else {
				result["domain"] = "Please enter a valid Atlassian domain (e.g., company.atlassian.net)"
			}
		case "Email":
			if fieldErr.Tag() == "required" {
				result["email"] = "Email is required"
			} else {
				result["email"] = "Please enter a valid email address"
			}
		case "APIToken":
			if fieldErr.Tag() == "required" {
				result["api_token"] = "API token is required"
			} else {
				result["api_token"] = "API token appears to be too short"
			}
		}
	}
	return result
}
