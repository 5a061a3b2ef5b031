// Package batch holds per-item outcomes of multi-item maintenance operations.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusResolved ItemStatus = "resolved"
	StatusNotFound ItemStatus = "not_found"
	StatusError    ItemStatus = "error"
)

// Result is the outcome of resolving one external file id to a daemon document id.
type Result struct {
	id     string
	docID  uint64
	status ItemStatus
	err    error
}

// NewResolved creates a result for a file found in the index.
func NewResolved(id string, docID uint64) Result {
	return Result{id: id, docID: docID, status: StatusResolved}
}

// NewNotFound creates a result for a file the lookup did not find.
func NewNotFound(id string) Result { return Result{id: id, status: StatusNotFound} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the external file identifier.
func (r Result) ID() string { return r.id }

// DocID returns the resolved daemon document id; zero unless resolved.
func (r Result) DocID() uint64 { return r.docID }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
