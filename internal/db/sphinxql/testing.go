package sphinxql

import "database/sql"

// NewForTest wraps an existing *sql.DB (e.g. sqlmock) as a Daemon.
func NewForTest(conn *sql.DB) *Daemon {
	return &Daemon{conn: conn}
}
