package formula

import "maps"

// Snapshot is a read-only view of per-source ranking telemetry taken at call time.
// A missing entry means the source has no telemetry for that statistic.
type Snapshot interface {
	Popularity(src uint32) (float64, bool)
	RatingAverage(src uint32) (float64, bool)
	RatingDeviation(src uint32) (float64, bool)
}

// Stats is an immutable in-memory Snapshot.
type Stats struct {
	rc map[uint32]float64
	ra map[uint32]float64
	rd map[uint32]float64
}

// NewStats copies the popularity (rc), rating average (ra) and rating deviation (rd) tables.
func NewStats(rc, ra, rd map[uint32]float64) *Stats {
	return &Stats{rc: maps.Clone(rc), ra: maps.Clone(ra), rd: maps.Clone(rd)}
}

// Empty returns a snapshot without telemetry; every source ranks neutral.
func Empty() *Stats { return &Stats{} }

// Popularity returns the rolling popularity count of src.
func (s *Stats) Popularity(src uint32) (float64, bool) {
	v, ok := s.rc[src]
	return v, ok
}

// RatingAverage returns the rolling rating average of src.
func (s *Stats) RatingAverage(src uint32) (float64, bool) {
	v, ok := s.ra[src]
	return v, ok
}

// RatingDeviation returns the rolling rating deviation of src.
func (s *Stats) RatingDeviation(src uint32) (float64, bool) {
	v, ok := s.rd[src]
	return v, ok
}

// Len returns the number of sources per table.
func (s *Stats) Len() (rc, ra, rd int) { return len(s.rc), len(s.ra), len(s.rd) }
