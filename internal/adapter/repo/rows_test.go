package repo

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// generationRow is one row of QListGenerationsBySession.
type generationRow struct {
	id, sessionID, mode string
	parts               []string
	instruction, model  string
	status, errText     string
	resultKey           string
	durationMS          int64
	createdAt           time.Time
}

type generationRows struct {
	testRowsBase
	rows []generationRow
	idx  int
}

func (r *generationRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *generationRows) Scan(dest ...any) error {
	if len(dest) != 11 {
		return fmt.Errorf("expected 11 destinations, got %d", len(dest))
	}
	row := r.rows[r.idx-1]
	*dest[0].(*string) = row.id
	*dest[1].(*string) = row.sessionID
	*dest[2].(*string) = row.mode
	*dest[3].(*[]string) = row.parts
	*dest[4].(*string) = row.instruction
	*dest[5].(*string) = row.model
	*dest[6].(*string) = row.status
	*dest[7].(*string) = row.errText
	*dest[8].(*string) = row.resultKey
	*dest[9].(*int64) = row.durationMS
	*dest[10].(*time.Time) = row.createdAt
	return nil
}

func (r *generationRows) Err() error { return nil }

func (r *generationRows) Close() {}
