package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

const listSourcesQuery = `
	SELECT id, domain, groups, blocked
	FROM sources
	ORDER BY id
`

// PostgresLister reads sources from the sources table.
type PostgresLister struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresLister creates a lister over an open database handle.
func NewPostgresLister(db *sql.DB, logger *zap.Logger) *PostgresLister {
	return &PostgresLister{db: db, logger: logger}
}

// OpenPostgres opens a lib/pq connection pool for dsn.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// ListAll returns every source ordered by id. Rows that do not scan or carry an id
// outside the uint32 range are logged and skipped.
func (l *PostgresLister) ListAll(ctx context.Context) ([]domsrc.Source, error) {
	rows, err := l.db.QueryContext(ctx, listSourcesQuery)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domsrc.Source
	for rows.Next() {
		var (
			id      int64
			d       string
			groups  []string
			blocked bool
		)
		if err := rows.Scan(&id, &d, pq.Array(&groups), &blocked); err != nil {
			l.logger.Warn("Skipping malformed source row", zap.Error(err))
			continue
		}
		if id < 0 || id > int64(^uint32(0)) {
			l.logger.Warn("Skipping source with out-of-range id", zap.Int64("id", id), zap.String("domain", d))
			continue
		}
		out = append(out, domsrc.New(uint32(id), d, groups, blocked))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	if out == nil {
		out = []domsrc.Source{}
	}
	return out, nil
}
