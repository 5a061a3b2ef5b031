package db

// Outcome is the daemon's answer to one query of a batch.
type Outcome struct {
	Total      uint64
	TotalFound uint64
	Entries    []Entry
	Warning    string
	// Error is set when the daemon rejected or skipped the query.
	Error string
}

// Entry is a single document hit.
type Entry struct {
	ID     uint64
	Weight int64
	// Attrs holds the remaining returned columns as text.
	Attrs map[string]string
}
