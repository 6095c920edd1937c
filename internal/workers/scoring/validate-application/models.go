// internal/workers/scoring/validate-application/models.go
package validateapplication

import (
	"encoding/json"

	"loan-risk-workers/internal/common/validation"
)

type Input struct {
	Application json.RawMessage `json:"application"`
}

type Output struct {
	Valid  bool                         `json:"valid"`
	Errors []validation.ValidationError `json:"validationErrors,omitempty"`
}
