// internal/store/decisions.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/models"
)

// DocumentIndexer is the slice of the search client the store needs.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, index, id string, body []byte) error
}

// DecisionStore persists scored decisions. Postgres is the system of record;
// the Redis cache and the search index are best effort and never fail a save.
type DecisionStore struct {
	db       *sql.DB
	redis    *redis.Client
	indexer  DocumentIndexer
	index    string
	cacheTTL time.Duration
	logger   logger.Logger
}

// DecisionRecord is a stored decision together with the application that
// produced it.
type DecisionRecord struct {
	Decision    models.RiskDecision  `json:"decision"`
	Application *models.RawApplication `json:"application,omitempty"`
}

// NewDecisionStore wires the persistence backends. The redis client and the
// indexer may be nil; the store degrades to Postgres only.
func NewDecisionStore(db *sql.DB, rdb *redis.Client, indexer DocumentIndexer, index string, cacheTTL time.Duration, log logger.Logger) *DecisionStore {
	return &DecisionStore{
		db:       db,
		redis:    rdb,
		indexer:  indexer,
		index:    index,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Save writes the decision to Postgres, then caches and indexes it.
func (s *DecisionStore) Save(ctx context.Context, decision *models.RiskDecision, app *models.RawApplication) error {
	reasonsJSON, err := json.Marshal(decision.Reasons)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	var appJSON []byte
	if app != nil {
		appJSON, err = json.Marshal(app)
		if err != nil {
			return errors.NewDatabaseInsertFailedError(err)
		}
	}

	query := `
		INSERT INTO risk_decisions (
			decision_id, status, risk_score, threshold_used,
			reasons, application, scored_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err = s.db.ExecContext(ctx, query,
		decision.DecisionID,
		decision.Status,
		decision.RiskScore,
		decision.ThresholdUsed,
		reasonsJSON,
		appJSON,
		decision.ScoredAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewDatabaseInsertFailedError(fmt.Errorf("decision %s already stored", decision.DecisionID))
		}
		return errors.NewDatabaseInsertFailedError(err)
	}

	s.cacheDecision(ctx, decision, app)
	s.indexDecision(ctx, decision, app)
	return nil
}

// Get returns one stored decision by id, checking the cache first.
func (s *DecisionStore) Get(ctx context.Context, decisionID string) (*DecisionRecord, error) {
	if record := s.cachedDecision(ctx, decisionID); record != nil {
		return record, nil
	}

	query := `
		SELECT decision_id, status, risk_score, threshold_used, reasons, application, scored_at
		FROM risk_decisions
		WHERE decision_id = $1`

	record, err := s.scanDecision(s.db.QueryRowContext(ctx, query, decisionID))
	if err == sql.ErrNoRows {
		return nil, errors.NewDecisionNotFoundError(decisionID)
	}
	if err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}
	return record, nil
}

func (s *DecisionStore) scanDecision(row *sql.Row) (*DecisionRecord, error) {
	var record DecisionRecord
	var reasonsJSON, appJSON []byte

	err := row.Scan(
		&record.Decision.DecisionID,
		&record.Decision.Status,
		&record.Decision.RiskScore,
		&record.Decision.ThresholdUsed,
		&reasonsJSON,
		&appJSON,
		&record.Decision.ScoredAt,
	)
	if err != nil {
		return nil, err
	}

	if len(reasonsJSON) > 0 {
		if err := json.Unmarshal(reasonsJSON, &record.Decision.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons: %w", err)
		}
	}
	if len(appJSON) > 0 {
		record.Application = &models.RawApplication{}
		if err := json.Unmarshal(appJSON, record.Application); err != nil {
			return nil, fmt.Errorf("decode application: %w", err)
		}
	}
	return &record, nil
}

func cacheKey(decisionID string) string {
	return "decision:" + decisionID
}

func (s *DecisionStore) cacheDecision(ctx context.Context, decision *models.RiskDecision, app *models.RawApplication) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(DecisionRecord{Decision: *decision, Application: app})
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, cacheKey(decision.DecisionID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Decision cache write failed", map[string]interface{}{
			"decisionId": decision.DecisionID,
			"error":      err.Error(),
		})
	}
}

func (s *DecisionStore) cachedDecision(ctx context.Context, decisionID string) *DecisionRecord {
	if s.redis == nil {
		return nil
	}

	payload, err := s.redis.Get(ctx, cacheKey(decisionID)).Result()
	if err != nil {
		return nil
	}

	var record DecisionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil
	}
	return &record
}

func (s *DecisionStore) indexDecision(ctx context.Context, decision *models.RiskDecision, app *models.RawApplication) {
	if s.indexer == nil {
		return
	}

	payload, err := json.Marshal(DecisionRecord{Decision: *decision, Application: app})
	if err != nil {
		return
	}

	if err := s.indexer.IndexDocument(ctx, s.index, decision.DecisionID, payload); err != nil {
		s.logger.Warn("Decision index write failed", map[string]interface{}{
			"decisionId": decision.DecisionID,
			"index":      s.index,
			"error":      err.Error(),
		})
	}
}
