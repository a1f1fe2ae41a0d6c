// internal/sinks/postgres.go
package sinks

import (
	"context"
	"database/sql"
	"encoding/json"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/models"
)

const insertRecordQuery = `
	INSERT INTO routing_records (
		request_id, task_type, strategy, confidence,
		sensitivity_level, sensitivity_score, capability_level, complexity,
		estimated_savings, rationale, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// PostgresSink persists routing records for offline analysis.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	rationale, err := json.Marshal(rec.Verdict.Rationale)
	if err != nil {
		return stderrors.NewRecordPersistFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, insertRecordQuery,
		rec.RequestID,
		rec.TaskType,
		string(rec.Verdict.Strategy),
		rec.Verdict.Confidence,
		string(rec.Sensitivity.Level),
		rec.Sensitivity.Score,
		string(rec.Capability.LocalCapability),
		string(rec.Capability.Complexity),
		rec.Cost.EstimatedSavings,
		rationale,
		rec.Timestamp,
	)
	if err != nil {
		return stderrors.NewRecordPersistFailedError(err)
	}
	return nil
}
