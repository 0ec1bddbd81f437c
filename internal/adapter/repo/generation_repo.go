package repo

import (
	"context"
	"time"

	"housepaint/internal/domain"
	"housepaint/internal/infra"
	"housepaint/internal/sqlinline"
)

// GenerationRepo persists generation attempts through marker-tagged queries.
type GenerationRepo struct {
	sql infra.SQLExecutor
}

// NewGenerationRepo creates a new generation repo.
func NewGenerationRepo(sql infra.SQLExecutor) *GenerationRepo {
	return &GenerationRepo{sql: sql}
}

// Record inserts one attempt.
func (r *GenerationRepo) Record(ctx context.Context, rec domain.GenerationRecord) error {
	parts := make([]string, 0, len(rec.Parts))
	for _, p := range rec.Parts {
		parts = append(parts, string(p))
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		rec.ID, rec.SessionID, rec.Mode, parts, rec.Instruction, rec.Model,
		string(rec.Status), rec.Error, rec.ResultKey, rec.Duration.Milliseconds(), createdAt)
	return err
}

// ListBySession returns the most recent attempts for a session, newest first.
func (r *GenerationRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListGenerationsBySession, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.GenerationRecord
	for rows.Next() {
		var (
			rec        domain.GenerationRecord
			parts      []string
			status     string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Mode, &parts, &rec.Instruction, &rec.Model,
			&status, &rec.Error, &rec.ResultKey, &durationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		for _, p := range parts {
			rec.Parts = append(rec.Parts, domain.ExteriorPart(p))
		}
		rec.Status = domain.GenerationStatus(status)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
