// internal/workers/scoring/validate-application/handler_test.go
package validateapplication

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/validation"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	validator, err := validation.NewApplicationValidator()
	require.NoError(t, err)
	return NewHandler(&Config{Timeout: 5 * time.Second}, validator, logger.NewTestLogger(t))
}

func validApplication() map[string]interface{} {
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

func inputFor(t *testing.T, app map[string]interface{}) *Input {
	t.Helper()
	payload, err := json.Marshal(app)
	require.NoError(t, err)
	return &Input{Application: payload}
}

func TestExecute_ValidApplication(t *testing.T) {
	handler := testHandler(t)

	output, err := handler.Execute(context.Background(), inputFor(t, validApplication()))
	require.NoError(t, err)

	assert.True(t, output.Valid)
	assert.Empty(t, output.Errors)
}

func TestExecute_InvalidApplicationCompletesWithErrors(t *testing.T) {
	handler := testHandler(t)

	app := validApplication()
	delete(app, "loan_amnt")
	app["sub_grade"] = "Z9"

	output, err := handler.Execute(context.Background(), inputFor(t, app))
	require.NoError(t, err)

	assert.False(t, output.Valid)
	assert.NotEmpty(t, output.Errors)
}

func TestExecute_MissingPayload(t *testing.T) {
	handler := testHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}

func TestExecute_MalformedPayload(t *testing.T) {
	handler := testHandler(t)

	_, err := handler.Execute(context.Background(), &Input{Application: []byte("{not json")})
	assert.Error(t, err)
}
