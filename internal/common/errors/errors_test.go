// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	stdErr := NewEvaluationError(fmt.Errorf("bad margin"))

	assert.Equal(t, ErrCodeEvaluationFailed, CodeOf(stdErr))
	assert.Equal(t, ErrCodeEvaluationFailed, CodeOf(fmt.Errorf("scoring: %w", stdErr)))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain error")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(NewValidationFailedError("term: invalid")))
	assert.True(t, IsClientError(NewPreprocessingError("loan_amnt", "must be positive")))
	assert.False(t, IsClientError(NewEvaluationError(fmt.Errorf("boom"))))
	assert.False(t, IsClientError(NewDatabaseInsertFailedError(fmt.Errorf("boom"))))
	assert.False(t, IsClientError(stderrors.New("plain error")))
}

func TestNewPreprocessingError_CarriesField(t *testing.T) {
	err := NewPreprocessingError("fico_range", "must be positive")

	assert.Equal(t, ErrCodePreprocessingFailed, err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, "fico_range", err.Metadata["field"])
	assert.Contains(t, err.Details, "fico_range")
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeIndexWriteFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeValidationFailed, 0},
		{ErrCodePreprocessingFailed, 0},
		{ErrCodeEvaluationFailed, 0},
		{ErrCodeExplanationFailed, 0},
		{ErrCodeArtifactMissing, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
			assert.Equal(t, tt.retries > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewDatabaseInsertFailedError(fmt.Errorf("duplicate key"))
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "DATABASE_INSERT_FAILED", bpmnErr.Code)
	assert.Equal(t, stdErr.Message, bpmnErr.Message)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Equal(t, "DATABASE_INSERT_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableGetsZeroRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewValidationFailedError("bad term"))

	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmnErr := &BPMNError{
		Code:      "EVALUATION_FAILED",
		Message:   "Model evaluation failed",
		Details:   "non-finite probability",
		Retryable: false,
		ErrorVariables: map[string]interface{}{
			"decisionId": "abc-123",
		},
	}

	vars := bpmnErr.ToErrorVariables()
	require.NotNil(t, vars)
	assert.Equal(t, "EVALUATION_FAILED", vars["errorCode"])
	assert.Equal(t, "Model evaluation failed", vars["errorMessage"])
	assert.Equal(t, "non-finite probability", vars["errorDetails"])
	assert.Equal(t, false, vars["retryable"])
	assert.Equal(t, "abc-123", vars["decisionId"])
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeArtifactMissing, "ARTIFACT"},
		{ErrCodeSchemaInvalid, "ARTIFACT"},
		{ErrCodeValidationFailed, "CLIENT_INPUT"},
		{ErrCodePreprocessingFailed, "CLIENT_INPUT"},
		{ErrCodeEvaluationFailed, "MODEL"},
		{ErrCodeExplanationFailed, "MODEL"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeDecisionNotFound, "DATABASE"},
		{ErrCodeIndexWriteFailed, "DATABASE"},
		{ErrCodeNotificationSendFailed, "NOTIFICATION"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}
