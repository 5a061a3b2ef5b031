package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrUnavailable marks a transport failure: the daemon or store could not be reached.
	ErrUnavailable = errors.New("db: unavailable")
	// ErrProtocol marks an error reported by the daemon for a whole request.
	ErrProtocol = errors.New("db: protocol error")
	// ErrInvalidQuery marks a query rejected before it was sent.
	ErrInvalidQuery = errors.New("db: invalid query")
)

// Op constants name the failing command for error context.
const (
	OpPing    = "PING"
	OpHGetAll = "HGETALL"
	OpScan    = "SCAN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpXAdd    = "XADD"
	OpSelect  = "SELECT"
	OpUpdate  = "UPDATE"
	OpConnect = "CONNECT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
