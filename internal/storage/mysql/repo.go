// Package mysql implements a MySQL-backed storage.Repository. MySQL has no
// COPY equivalent, so bulk inserts use a single multi-row INSERT per batch
// inside a transaction; with the pipeline's batch sizes this keeps the round
// trips and the binlog pressure low.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/byluca/flight-delays-etl/internal/storage/sqlutil"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a connection pool and returns a Close function for
// cleanup. The DSN is validated before dialing to fail fast on typos.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// CopyInto bulk-inserts rows into table using one multi-row INSERT inside a
// transaction. nil values insert NULL.
func (r *Repository) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns given")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt := buildInsertSQL(table, columns, len(rows))
	res, err := tx.ExecContext(ctx, stmt, sqlutil.FlattenArgs(rows)...)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Query runs a read-only statement and returns columns plus all rows.
func (r *Repository) Query(ctx context.Context, q string) ([]string, [][]any, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return sqlutil.ScanRows(rows)
}

// Exec executes a statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, q string) error {
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// buildInsertSQL renders INSERT INTO `t` (`c1`,`c2`) VALUES (?,?),(?,?)...
// for nRows rows.
func buildInsertSQL(table string, columns []string, nRows int) string {
	one := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(myFQN(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(mapIdent(columns), ","))
	b.WriteString(") VALUES ")
	for i := 0; i < nRows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(one)
	}
	return b.String()
}

// myIdent safely quotes a single identifier segment with backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// myFQN quotes a possibly schema-qualified name like "hr.events" to
// `hr`.`events`. If no dot is present, returns a single quoted ident.
func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = myIdent(c)
	}
	return out
}
