package models

import "strings"

// ValidationResult is a pure value reporting why an action (or config)
// was rejected. No side effects.
type ValidationResult struct {
	Valid    bool     `json:"isValid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func ValidResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

func InvalidResult(errs ...string) *ValidationResult {
	return &ValidationResult{Valid: false, Errors: errs}
}

func (r *ValidationResult) AddError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge folds another result into this one. Any invalid part makes the
// whole invalid.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

func (r *ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	return "invalid: " + strings.Join(r.Errors, "; ")
}
