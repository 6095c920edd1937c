// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/metrics"
	"loan-risk-workers/internal/explain"
	"loan-risk-workers/internal/features"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/risk"
	"loan-risk-workers/internal/schema"
	"loan-risk-workers/pkg/bundle"
)

// Pipeline runs one application through transform, evaluate and explain, and
// assembles the decision record. It is safe for concurrent use: the loaded
// model state is read-only and every request gets its own vector.
type Pipeline struct {
	schema     *schema.ColumnSchema
	evaluator  *risk.Evaluator
	attributor explain.Attributor
	recorder   Recorder
	logger     logger.Logger
}

// Recorder receives per-request scoring telemetry.
type Recorder interface {
	RecordApplicationScored(ctx context.Context, status string)
	RecordScoringDuration(ctx context.Context, duration time.Duration, status string)
}

// FromBundle builds the full pipeline from a validated artifact.
func FromBundle(b *bundle.Bundle, log logger.Logger) (*Pipeline, error) {
	cols := schema.NewColumnSchema(b.FeatureNames)

	evaluator, err := risk.NewEvaluator(b)
	if err != nil {
		return nil, err
	}

	attributor, err := explain.NewAttributor(b, evaluator.Predict, log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		schema:     cols,
		evaluator:  evaluator,
		attributor: attributor,
		logger:     log,
	}, nil
}

// New assembles a pipeline from explicit parts, for tests.
func New(cols *schema.ColumnSchema, evaluator *risk.Evaluator, attributor explain.Attributor, log logger.Logger) *Pipeline {
	return &Pipeline{
		schema:     cols,
		evaluator:  evaluator,
		attributor: attributor,
		logger:     log,
	}
}

// WithRecorder attaches a telemetry recorder and returns the pipeline.
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	p.recorder = r
	return p
}

// Schema returns the feature column schema in effect.
func (p *Pipeline) Schema() *schema.ColumnSchema {
	return p.schema
}

// Threshold returns the decision threshold in effect.
func (p *Pipeline) Threshold() float64 {
	return p.evaluator.Threshold()
}

// Score runs one application end to end. The explanation sees the same
// normalized vector the model scored.
func (p *Pipeline) Score(ctx context.Context, raw *models.RawApplication) (*models.RiskDecision, error) {
	start := time.Now()

	vec, err := features.Transform(raw, p.schema)
	if err != nil {
		metrics.ScoringFailures.WithLabelValues("preprocessing").Inc()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prob, class, err := p.evaluator.Evaluate(vec)
	if err != nil {
		metrics.ScoringFailures.WithLabelValues("evaluation").Inc()
		return nil, err
	}

	reasons, err := explain.Explain(vec, p.attributor, class)
	if err != nil {
		metrics.ScoringFailures.WithLabelValues("explanation").Inc()
		return nil, err
	}

	status := models.StatusApproved
	if class == 1 {
		status = models.StatusRejected
	}

	decision := &models.RiskDecision{
		DecisionID:    uuid.New().String(),
		Status:        status,
		RiskScore:     math.Round(prob*100*100) / 100,
		ThresholdUsed: p.evaluator.Threshold(),
		Reasons:       reasons,
		ScoredAt:      time.Now().UTC().Format(time.RFC3339),
	}

	metrics.ScoringRequests.WithLabelValues(status).Inc()
	metrics.ScoringDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if p.recorder != nil {
		p.recorder.RecordApplicationScored(ctx, status)
		p.recorder.RecordScoringDuration(ctx, time.Since(start), status)
	}

	p.logger.Info("Application scored", map[string]interface{}{
		"decisionId": decision.DecisionID,
		"status":     decision.Status,
		"riskScore":  decision.RiskScore,
		"threshold":  decision.ThresholdUsed,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return decision, nil
}
