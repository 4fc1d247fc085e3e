package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides the minimal evaluations-table CRUD the operator façade's
// submit/status/cancel operations need (spec.md §6). It intentionally does
// not expose a generic query builder. No code in this repository calls the
// evaluation methods; guardstackd serve --db only opens the store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and applies
// Schema. Pass ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// A single physical file; modernc.org/sqlite does not support
	// concurrent writers across connections the way a server database
	// does, so pin the pool to one connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// InsertEvaluation creates a pending evaluation row for modelID.
func (s *Store) InsertEvaluation(ctx context.Context, id, modelID, pillarsJSON, configJSON string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, model_id, status, pillars, config, workflow_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
		id, modelID, string(EvaluationPending), pillarsJSON, configJSON, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert evaluation %s: %w", id, err)
	}
	return nil
}

// GetEvaluation returns the evaluation row for id.
func (s *Store) GetEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, model_id, status, pillars, config, workflow_name, created_at, updated_at
		 FROM evaluations WHERE id = ?`, id)

	var e Evaluation
	var status string
	if err := row.Scan(&e.ID, &e.ModelID, &status, &e.Pillars, &e.Config, &e.WorkflowName, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Evaluation{}, fmt.Errorf("sqlite: get evaluation %s: %w", id, err)
	}
	e.Status = EvaluationStatus(status)
	return e, nil
}

// SetEvaluationStatus updates an evaluation's status, and its workflow_name
// if workflowName is non-empty (an empty value never overwrites a
// previously recorded name, per spec.md §9's open question about absent
// workflow names on some call paths).
func (s *Store) SetEvaluationStatus(ctx context.Context, id string, status EvaluationStatus, workflowName string) error {
	var err error
	if workflowName != "" {
		_, err = s.db.ExecContext(ctx,
			`UPDATE evaluations SET status = ?, workflow_name = ? WHERE id = ?`,
			string(status), workflowName, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE evaluations SET status = ? WHERE id = ?`,
			string(status), id)
	}
	if err != nil {
		return fmt.Errorf("sqlite: set evaluation status %s: %w", id, err)
	}
	return nil
}

// CancelEvaluation marks a pending or running evaluation as cancelled. It
// reports whether a row was actually transitioned.
func (s *Store) CancelEvaluation(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE evaluations SET status = ? WHERE id = ? AND status IN (?, ?)`,
		string(EvaluationCancelled), id, string(EvaluationPending), string(EvaluationRunning))
	if err != nil {
		return false, fmt.Errorf("sqlite: cancel evaluation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// InsertEvaluationResult stores one pillar's PillarResult DTO for an
// evaluation.
func (s *Store) InsertEvaluationResult(ctx context.Context, r EvaluationResult) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluation_results
		 (evaluation_id, pillar, score, confidence, risk_level, raw_metrics, findings, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (evaluation_id, pillar) DO UPDATE SET
		   score = excluded.score, confidence = excluded.confidence, risk_level = excluded.risk_level,
		   raw_metrics = excluded.raw_metrics, findings = excluded.findings, duration_ms = excluded.duration_ms`,
		r.EvaluationID, r.Pillar, r.Score, r.Confidence, string(r.RiskLevel), r.RawMetrics, r.Findings, r.DurationMS, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert evaluation result %s/%s: %w", r.EvaluationID, r.Pillar, err)
	}
	return nil
}

// ListEvaluationResults returns every pillar result recorded for an
// evaluation.
func (s *Store) ListEvaluationResults(ctx context.Context, evaluationID string) ([]EvaluationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT evaluation_id, pillar, score, confidence, risk_level, raw_metrics, findings, duration_ms, created_at
		 FROM evaluation_results WHERE evaluation_id = ? ORDER BY pillar`, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list evaluation results %s: %w", evaluationID, err)
	}
	defer rows.Close()

	var out []EvaluationResult
	for rows.Next() {
		var r EvaluationResult
		var risk string
		if err := rows.Scan(&r.EvaluationID, &r.Pillar, &r.Score, &r.Confidence, &risk, &r.RawMetrics, &r.Findings, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan evaluation result: %w", err)
		}
		r.RiskLevel = RiskLevel(risk)
		out = append(out, r)
	}
	return out, rows.Err()
}
