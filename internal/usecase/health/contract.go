package health

import (
	"context"
	"time"
)

// Pinger is a backend the service probes: the search daemon or the Redis store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// probeTimeout bounds a single probe so a hung backend cannot stall /health.
const probeTimeout = 2 * time.Second
