package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("conn refused")
	tests := []struct {
		name       string
		daemon     Pinger
		redis      Pinger
		wantStatus Status
		wantDaemon CheckResult
		wantRedis  CheckResult
	}{
		{"all healthy", &mockPinger{}, &mockPinger{}, Healthy, CheckOK, CheckOK},
		{"redis down", &mockPinger{}, &mockPinger{err: down}, Degraded, CheckOK, CheckError},
		{"daemon down", &mockPinger{err: down}, &mockPinger{}, Unhealthy, CheckError, CheckOK},
		{"both down", &mockPinger{err: down}, &mockPinger{err: down}, Unhealthy, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.daemon, tt.redis).Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("expected %q, got %q", tt.wantStatus, r.Status)
			}
			if r.Checks[ComponentDaemon] != tt.wantDaemon {
				t.Errorf("expected daemon %q, got %q", tt.wantDaemon, r.Checks[ComponentDaemon])
			}
			if r.Checks[ComponentRedis] != tt.wantRedis {
				t.Errorf("expected redis %q, got %q", tt.wantRedis, r.Checks[ComponentRedis])
			}
		})
	}
}

func TestCheck_NoRedis(t *testing.T) {
	r := New(&mockPinger{}, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentRedis]; ok {
		t.Error("redis check should be absent when redis is nil")
	}
}

type blockingPinger struct{}

func (blockingPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_HungProbeTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	r := New(&mockPinger{}, blockingPinger{}).Check(ctx)

	if time.Since(start) > probeTimeout {
		t.Error("Check did not honour the context deadline")
	}
	if r.Status != Degraded || r.Checks[ComponentRedis] != CheckError {
		t.Errorf("got %q %v", r.Status, r.Checks)
	}
}
