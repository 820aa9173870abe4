package manifest

import (
	"fmt"
	"strings"
)

// Error codes carried by ValidationError.
const (
	CodeMissing = "missing"
	CodeName    = "name"
	CodeVersion = "version"
)

// ValidationError describes one manifest field that failed validation.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("manifest validation error: %s - %s", e.Field, e.Message)
}

// ValidationResult contains the outcome of validating a manifest.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []string
}

// Validate checks required fields, that name and version are strings, the
// expected plugin name (skipped when empty), and the version format. A description that never mentions context
// is reported as a warning.
func (m *Manifest) Validate(expectedName string) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, field := range m.MissingFields() {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeMissing,
			Field:   field,
			Message: "required field is missing or empty",
		})
	}

	for _, field := range []struct{ key, code string }{{"name", CodeName}, {"version", CodeVersion}} {
		if v, ok := m.Raw[field.key]; ok && v != nil {
			if _, isString := v.(string); !isString {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Code:    field.code,
					Field:   field.key,
					Message: fmt.Sprintf("must be a string, got %T", v),
				})
			}
		}
	}

	if expectedName != "" && m.Name != "" && m.Name != expectedName {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeName,
			Field:   "name",
			Message: fmt.Sprintf("plugin name is %q, want %q", m.Name, expectedName),
		})
	}

	if m.Version != "" && !m.IsSemanticVersion() {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeVersion,
			Field:   "version",
			Message: fmt.Sprintf("version %q should have at least 3 dot-separated parts", m.Version),
		})
	}

	if m.Description != "" && !strings.Contains(strings.ToLower(m.Description), "context") {
		result.Warnings = append(result.Warnings, "description should mention context")
	}

	return result
}

// ErrorsWithCode returns the errors carrying code.
func (r ValidationResult) ErrorsWithCode(code string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}
