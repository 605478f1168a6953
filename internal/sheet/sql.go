package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"staffregister/internal/register"
)

const tableName = "attendance_register"

type dialect int

const (
	postgres dialect = iota
	sqlite
)

// SQL stores rows in a relational table whose columns mirror the register
// header. The header row is synthesized from the column list.
type SQL struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
}

// NewPostgres migrates and returns a Postgres-backed table.
func NewPostgres(ctx context.Context, db *sql.DB, timeout time.Duration) (*SQL, error) {
	return newSQL(ctx, db, postgres, timeout)
}

// NewSQLite migrates and returns a SQLite-backed table.
func NewSQLite(ctx context.Context, db *sql.DB, timeout time.Duration) (*SQL, error) {
	return newSQL(ctx, db, sqlite, timeout)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect, timeout time.Duration) (*SQL, error) {
	s := &SQL{db: db, dialect: d, timeout: timeout}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("sheet: migrate %s: %w", tableName, err)
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	cols := make([]string, 0, len(register.Columns)+2)
	switch s.dialect {
	case postgres:
		cols = append(cols, "seq BIGSERIAL PRIMARY KEY")
	default:
		cols = append(cols, "seq INTEGER PRIMARY KEY AUTOINCREMENT")
	}
	for _, c := range register.Columns {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	switch s.dialect {
	case postgres:
		cols = append(cols, "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()")
	default:
		cols = append(cols, "created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP")
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+tableName+" (\n\t"+strings.Join(cols, ",\n\t")+"\n)")
	return err
}

func (s *SQL) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQL) Rows(ctx context.Context) ([][]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(register.Columns[:], ", ")+" FROM "+tableName+" ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]string{register.Header()}
	for rows.Next() {
		row := make([]string, len(register.Columns))
		dest := make([]any, len(row))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AppendRow inserts one data row. A row equal to the header is accepted and
// ignored since the header is implicit in the schema.
func (s *SQL) AppendRow(ctx context.Context, row []string) error {
	if len(row) != len(register.Columns) {
		return fmt.Errorf("schema mismatch: row has %d columns, table has %d", len(row), len(register.Columns))
	}
	if isHeader(row) {
		return nil
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	marks := make([]string, len(row))
	args := make([]any, len(row))
	for i, v := range row {
		marks[i] = s.placeholder(i + 1)
		args[i] = v
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+tableName+" ("+strings.Join(register.Columns[:], ", ")+") VALUES ("+strings.Join(marks, ", ")+")",
		args...)
	return err
}

func (s *SQL) placeholder(n int) string {
	if s.dialect == postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func isHeader(row []string) bool {
	for i, c := range register.Columns {
		if row[i] != c {
			return false
		}
	}
	return true
}
