// internal/common/validation/schema_test.go
package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"loan_amnt":            10000,
		"term":                 36,
		"int_rate":             12.5,
		"sub_grade":            "B3",
		"emp_length":           4,
		"annual_inc":           65000,
		"dti":                  18.2,
		"verification_status":  "Verified",
		"pub_rec":              0,
		"pub_rec_bankruptcies": 0,
		"revol_bal":            4200,
		"revol_util":           41.3,
		"fico_range":           702,
		"earliest_cr_line":     "2010-06-15",
		"total_acc":            24,
		"mort_acc":             2,
		"open_acc":             9,
		"purpose":              "car",
		"application_type":     "Individual",
		"home_ownership":       "RENT",
	}
}

func marshal(t *testing.T, payload map[string]interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func TestValidateJSON_ValidApplication(t *testing.T) {
	v, err := NewApplicationValidator()
	require.NoError(t, err)

	result, err := v.ValidateJSON(marshal(t, validPayload()))
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "", result.Describe())
}

func TestValidateJSON_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing loan amount", func(p map[string]interface{}) { delete(p, "loan_amnt") }},
		{"term outside enum", func(p map[string]interface{}) { p["term"] = 48 }},
		{"fractional term", func(p map[string]interface{}) { p["term"] = 36.5 }},
		{"bad sub grade", func(p map[string]interface{}) { p["sub_grade"] = "H1" }},
		{"lowercase sub grade", func(p map[string]interface{}) { p["sub_grade"] = "b3" }},
		{"bad credit line date", func(p map[string]interface{}) { p["earliest_cr_line"] = "June 2010" }},
		{"negative dti", func(p map[string]interface{}) { p["dti"] = -1 }},
		{"empty purpose", func(p map[string]interface{}) { p["purpose"] = "" }},
		{"string loan amount", func(p map[string]interface{}) { p["loan_amnt"] = "10000" }},
	}

	v, err := NewApplicationValidator()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			result, err := v.ValidateJSON(marshal(t, payload))
			require.NoError(t, err)

			assert.False(t, result.Valid)
			assert.NotEmpty(t, result.Errors)
		})
	}
}

func TestValidateJSON_MalformedPayload(t *testing.T) {
	v, err := NewApplicationValidator()
	require.NoError(t, err)

	_, err = v.ValidateJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestDescribe_JoinsErrors(t *testing.T) {
	result := &ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{Field: "loan_amnt", Message: "loan_amnt is required"},
			{Field: "term", Message: "term must be one of the following: 36, 60"},
		},
	}

	assert.Equal(t,
		"loan_amnt: loan_amnt is required; term: term must be one of the following: 36, 60",
		result.Describe(),
	)
}
