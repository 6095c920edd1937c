// internal/workers/scoring/send-decision-notice/handler_test.go
package senddecisionnotice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/models"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func testConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		AWSRegion:    "us-east-1",
		FromEmail:    "decisions@example.com",
		EmailEnabled: true,
		SMSEnabled:   true,
	}
}

func testInput() *Input {
	return &Input{
		DecisionID:     "d-001",
		Status:         models.StatusRejected,
		RiskScore:      81.25,
		Reasons:        []string{"Interest Rate influenced this decision"},
		ApplicantEmail: "applicant@example.com",
		ApplicantPhone: "+15550100",
	}
}

func TestExecute_SendsEmailAndSMSForRejection(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := NewHandlerWithClients(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NoticeID)
	assert.NotEmpty(t, output.SentAt)

	require.Len(t, sesMock.inputs, 1)
	email := sesMock.inputs[0]
	assert.Equal(t, "decisions@example.com", *email.Source)
	assert.Equal(t, []string{"applicant@example.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "Your loan application was rejected", *email.Message.Subject.Data)
	assert.Contains(t, *email.Message.Body.Text.Data, "Risk score: 81.25")
	assert.Contains(t, *email.Message.Body.Text.Data, "Reference: d-001")

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550100", *snsMock.inputs[0].PhoneNumber)
}

func TestExecute_NoSMSForApproval(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := NewHandlerWithClients(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	input := testInput()
	input.Status = models.StatusApproved

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs)
}

func TestExecute_AllChannelsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	handler := NewHandlerWithClients(cfg, &mockSES{}, &mockSNS{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestExecute_EmailFailureCompletesWithFailedStatus(t *testing.T) {
	sesMock := &mockSES{err: fmt.Errorf("throttled")}
	handler := NewHandlerWithClients(testConfig(), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestExecute_InputGuards(t *testing.T) {
	handler := NewHandlerWithClients(testConfig(), &mockSES{}, &mockSNS{}, logger.NewTestLogger(t))

	noID := testInput()
	noID.DecisionID = ""
	_, err := handler.Execute(context.Background(), noID)
	assert.Error(t, err)

	noContact := testInput()
	noContact.ApplicantEmail = ""
	noContact.ApplicantPhone = ""
	_, err = handler.Execute(context.Background(), noContact)
	assert.Error(t, err)
}

func TestRenderNotice(t *testing.T) {
	handler := NewHandlerWithClients(testConfig(), &mockSES{}, &mockSNS{}, logger.NewTestLogger(t))

	subject, body := handler.renderNotice(testInput())

	assert.Equal(t, "Your loan application was rejected", subject)
	assert.Contains(t, body, "Decision: Rejected")
	assert.Contains(t, body, "Key factors:")
	assert.Contains(t, body, "  - Interest Rate influenced this decision")
}
