// internal/workers/scoring/record-decision/handler_test.go
package recorddecision

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/store"
)

func testInput() *Input {
	return &Input{
		DecisionID:    "d-001",
		Status:        models.StatusRejected,
		RiskScore:     81.25,
		ThresholdUsed: 0.5,
		Reasons:       []string{"Interest Rate influenced this decision"},
		ScoredAt:      "2026-08-24T10:00:00Z",
		Application: &models.RawApplication{
			LoanAmount: 10000,
			SubGrade:   "F1",
		},
	}
}

func testHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	decisions := store.NewDecisionStore(db, nil, nil, "", 0, logger.NewTestLogger(t))
	return NewHandler(&Config{Timeout: 5 * time.Second}, decisions, logger.NewTestLogger(t)), mock
}

func TestExecute_StoresDecision(t *testing.T) {
	handler, mock := testHandler(t)
	input := testInput()

	mock.ExpectExec("INSERT INTO risk_decisions").
		WithArgs(
			input.DecisionID,
			input.Status,
			input.RiskScore,
			input.ThresholdUsed,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			input.ScoredAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, output.Stored)
	assert.Equal(t, "d-001", output.DecisionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingDecisionID(t *testing.T) {
	handler, _ := testHandler(t)

	input := testInput()
	input.DecisionID = ""

	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

func TestExecute_InsertFailure(t *testing.T) {
	handler, mock := testHandler(t)

	mock.ExpectExec("INSERT INTO risk_decisions").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := handler.Execute(context.Background(), testInput())
	assert.Error(t, err)
}
