package model

// ValidationResult is returned by query-style checks instead of an
// error so callers can decide whether to abort.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidationResult builds a result whose IsValid flag follows errs.
func NewValidationResult(errs, warnings []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs, Warnings: warnings}
}
