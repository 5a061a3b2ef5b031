// Package sphinxql drives a Sphinx/Manticore search daemon over its MySQL-protocol interface.
package sphinxql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/psyvisions/foofind-web/internal/db"
)

// Compile-time check: Daemon implements db.Daemon.
var _ db.Daemon = (*Daemon)(nil)

// errNotExecuted is reported for queries that followed a failed query in the same batch.
const errNotExecuted = "not executed: an earlier query in the batch failed"

// Config holds connection parameters for the daemon.
type Config struct {
	Addr           string
	ConnectTimeout time.Duration
	// ReadTimeout bounds a whole round trip on the wire; zero disables it.
	ReadTimeout  time.Duration
	MaxOpenConns int
}

// Daemon implements db.Daemon over database/sql.
type Daemon struct {
	conn *sql.DB
}

// New opens a connection pool. No network traffic happens until first use.
func New(cfg Config) (*Daemon, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr is required")
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr
	mc.MultiStatements = true
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.ReadTimeout
	mc.WriteTimeout = cfg.ReadTimeout

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	conn := sql.OpenDB(connector)
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	return &Daemon{conn: conn}, nil
}

// Ping checks connectivity.
func (d *Daemon) Ping(ctx context.Context) error {
	if err := d.conn.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpConnect, Err: fmt.Errorf("%w: %v", db.ErrUnavailable, err)}
	}
	return nil
}

// Close releases the connection pool.
func (d *Daemon) Close() error { return d.conn.Close() }

// RunQueries sends every query followed by SHOW META in one multi-statement round trip.
func (d *Daemon) RunQueries(ctx context.Context, queries []*db.Query) ([]db.Outcome, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	stmts := make([]string, 0, 2*len(queries))
	for i, q := range queries {
		s, err := renderSelect(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		stmts = append(stmts, s, "SHOW META")
	}

	outcomes := make([]db.Outcome, len(queries))
	rows, err := d.conn.QueryContext(ctx, strings.Join(stmts, "; "))
	if err != nil {
		return failFrom(outcomes, 0, err)
	}
	defer rows.Close()

	set := 0
	for {
		qi := set / 2
		if set%2 == 0 {
			err = readEntries(rows, &outcomes[qi])
		} else {
			err = readMeta(rows, &outcomes[qi])
		}
		if err != nil {
			return failFrom(outcomes, qi, err)
		}
		set++
		if set == len(stmts) || !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return failFrom(outcomes, set/2, err)
	}
	for i := (set + 1) / 2; i < len(outcomes); i++ {
		outcomes[i].Error = errNotExecuted
	}
	return outcomes, nil
}

// failFrom marks query i failed with err and every later query not executed.
// Errors that are not reported by the daemon fail the whole batch.
func failFrom(outcomes []db.Outcome, i int, err error) ([]db.Outcome, error) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("%w: %v", db.ErrUnavailable, err)}
	}
	if i >= len(outcomes) {
		return outcomes, nil
	}
	outcomes[i] = db.Outcome{Error: me.Message}
	for j := i + 1; j < len(outcomes); j++ {
		outcomes[j] = db.Outcome{Error: errNotExecuted}
	}
	return outcomes, nil
}

func readEntries(rows *sql.Rows, out *db.Outcome) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	out.Entries = []db.Entry{}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		e := db.Entry{Attrs: make(map[string]string, len(cols))}
		for i, c := range cols {
			switch c {
			case idColumn:
				e.ID, _ = strconv.ParseUint(vals[i].String, 10, 64)
			case weightColumn:
				e.Weight, _ = strconv.ParseInt(vals[i].String, 10, 64)
			default:
				e.Attrs[c] = vals[i].String
			}
		}
		out.Entries = append(out.Entries, e)
	}
	return rows.Err()
}

func readMeta(rows *sql.Rows, out *db.Outcome) error {
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		switch name {
		case "total":
			out.Total, _ = strconv.ParseUint(value, 10, 64)
		case "total_found":
			out.TotalFound, _ = strconv.ParseUint(value, 10, 64)
		case "warning":
			out.Warning = value
		case "error":
			out.Error = value
		}
	}
	return rows.Err()
}

// UpdateAttributes runs one UPDATE per distinct value and sums the affected rows.
func (d *Daemon) UpdateAttributes(ctx context.Context, index, attr string, values map[uint64]int64) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	if !db.ValidIdent(index) || !db.ValidIdent(attr) {
		return 0, &db.Error{Op: db.OpUpdate, Err: fmt.Errorf("%w: %s.%s", db.ErrInvalidQuery, index, attr)}
	}
	total := 0
	for _, stmt := range renderUpdates(index, attr, values) {
		res, err := d.conn.ExecContext(ctx, stmt)
		if err != nil {
			return total, &db.Error{Op: db.OpUpdate, Err: classify(err)}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, &db.Error{Op: db.OpUpdate, Err: classify(err)}
		}
		total += int(n)
	}
	return total, nil
}

// classify tags err with ErrProtocol when the daemon reported it, ErrUnavailable otherwise.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("%w: %s", db.ErrProtocol, me.Message)
	}
	return fmt.Errorf("%w: %v", db.ErrUnavailable, err)
}
