// internal/workers/scoring/score-application/handler_test.go
package scoreapplication

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/pipeline"
	"loan-risk-workers/internal/schema"
	"loan-risk-workers/pkg/bundle"
)

func testPipeline(t *testing.T, intercept float64) *pipeline.Pipeline {
	t.Helper()
	features := []string{schema.ColFicoRange, schema.ColDTI}
	b := &bundle.Bundle{
		ModelType:    "logistic_regression",
		FeatureNames: features,
		Threshold:    0.5,
		Linear: &bundle.LinearModel{
			Coefficients: make([]float64, len(features)),
			Intercept:    intercept,
		},
		Background: [][]float64{make([]float64, len(features))},
	}
	p, err := pipeline.FromBundle(b, logger.NewTestLogger(t))
	require.NoError(t, err)
	return p
}

func testInput() *Input {
	return &Input{
		Application: models.RawApplication{
			LoanAmount:         10000,
			Term:               36,
			InterestRate:       12.5,
			SubGrade:           "B3",
			AnnualIncome:       65000,
			DTI:                18.2,
			VerificationStatus: "Verified",
			RevolvingBalance:   4200,
			FicoRange:          702,
			EarliestCreditLine: "2010-06-15",
			TotalAccounts:      24,
			OpenAccounts:       9,
			Purpose:            "car",
			ApplicationType:    "Individual",
			HomeOwnership:      "RENT",
		},
	}
}

func TestExecute_RejectedDecision(t *testing.T) {
	handler := NewHandler(
		&Config{Timeout: 5 * time.Second},
		testPipeline(t, math.Log(3)),
		logger.NewTestLogger(t),
	)

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, output.Status)
	assert.Equal(t, 75.0, output.RiskScore)
	assert.Equal(t, 0.5, output.ThresholdUsed)
	assert.NotEmpty(t, output.DecisionID)
	assert.NotEmpty(t, output.Reasons)
	assert.NotEmpty(t, output.ScoredAt)
}

func TestExecute_ApprovedDecision(t *testing.T) {
	handler := NewHandler(
		&Config{Timeout: 5 * time.Second},
		testPipeline(t, -math.Log(3)),
		logger.NewTestLogger(t),
	)

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, output.Status)
	assert.Equal(t, 25.0, output.RiskScore)
}

func TestExecute_InvalidApplication(t *testing.T) {
	handler := NewHandler(
		&Config{Timeout: 5 * time.Second},
		testPipeline(t, 0),
		logger.NewTestLogger(t),
	)

	input := testInput()
	input.Application.LoanAmount = 0

	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

func TestExecute_CancelledContext(t *testing.T) {
	handler := NewHandler(
		&Config{Timeout: 5 * time.Second},
		testPipeline(t, 0),
		logger.NewTestLogger(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Execute(ctx, testInput())
	assert.ErrorIs(t, err, context.Canceled)
}
