// Package validation checks incoming loan applications against a JSON
// schema before they reach the scoring pipeline.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// applicationSchema is the boundary contract for a raw loan application.
// Ranges here only reject values the transformer cannot recover from;
// value-level guards (zero FICO, non-positive amounts) live in the
// transformer so both entry points enforce them.
const applicationSchema = `{
	"type": "object",
	"required": [
		"loan_amnt", "term", "int_rate", "sub_grade", "emp_length",
		"annual_inc", "dti", "verification_status", "pub_rec",
		"pub_rec_bankruptcies", "revol_bal", "revol_util", "fico_range",
		"earliest_cr_line", "total_acc", "mort_acc", "open_acc",
		"purpose", "application_type", "home_ownership"
	],
	"properties": {
		"loan_amnt":            {"type": "number"},
		"term":                 {"type": "integer", "enum": [36, 60]},
		"int_rate":             {"type": "number", "minimum": 0},
		"sub_grade":            {"type": "string", "pattern": "^[A-G][1-5]$"},
		"emp_length":           {"type": "number", "minimum": 0},
		"annual_inc":           {"type": "number"},
		"dti":                  {"type": "number", "minimum": 0},
		"verification_status":  {"type": "string"},
		"pub_rec":              {"type": "number", "minimum": 0},
		"pub_rec_bankruptcies": {"type": "number", "minimum": 0},
		"revol_bal":            {"type": "number"},
		"revol_util":           {"type": "number", "minimum": 0},
		"fico_range":           {"type": "number", "minimum": 0},
		"earliest_cr_line":     {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"total_acc":            {"type": "number", "minimum": 0},
		"mort_acc":             {"type": "number", "minimum": 0},
		"open_acc":             {"type": "number", "minimum": 0},
		"purpose":              {"type": "string", "minLength": 1},
		"application_type":     {"type": "string", "minLength": 1},
		"home_ownership":       {"type": "string", "minLength": 1}
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ApplicationValidator validates raw application payloads.
type ApplicationValidator struct {
	schema *gojsonschema.Schema
}

// NewApplicationValidator compiles the application schema.
func NewApplicationValidator() (*ApplicationValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(applicationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile application schema: %w", err)
	}
	return &ApplicationValidator{schema: schema}, nil
}

// ValidateJSON checks a raw JSON payload against the application schema.
func (v *ApplicationValidator) ValidateJSON(payload []byte) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validate application: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out, nil
}

// Describe flattens validation errors into one details string for error
// payloads and logs.
func (r *ValidationResult) Describe() string {
	if r.Valid || len(r.Errors) == 0 {
		return ""
	}
	details := ""
	for i, e := range r.Errors {
		if i > 0 {
			details += "; "
		}
		details += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return details
}
