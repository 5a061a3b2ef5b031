package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the cache store is down; searches still run uncached.
	Degraded Status = "degraded"
	// Unhealthy indicates the search daemon is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDaemon = "daemon"
	ComponentRedis  = "redis"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	daemon Pinger
	redis  Pinger
}

// New creates a Service. redis can be nil.
func New(daemon, redis Pinger) *Service {
	return &Service{daemon: daemon, redis: redis}
}

// Check probes every component concurrently. A daemon failure makes the service
// Unhealthy; a Redis failure alone only Degraded.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 2)
	)
	run := func(name string, p Pinger) func() error {
		return func() error {
			res := probe(ctx, p)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		}
	}

	var g errgroup.Group
	g.Go(run(ComponentDaemon, s.daemon))
	if s.redis != nil {
		g.Go(run(ComponentRedis, s.redis))
	}
	_ = g.Wait()

	status := Healthy
	switch {
	case checks[ComponentDaemon] == CheckError:
		status = Unhealthy
	case checks[ComponentRedis] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func probe(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
