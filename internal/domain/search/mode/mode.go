package mode

// Mode is the daemon's query matching strategy.
type Mode string

// Match mode constants.
const (
	// Extended passes the query through in the daemon's boolean/phrase syntax.
	Extended Mode = "extended"
	// All matches documents containing every term; the query is escaped first.
	All Mode = "all"
	// FullScan ignores the query text and scans by attribute filters only.
	FullScan Mode = "fullscan"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Extended || m == All || m == FullScan
}
