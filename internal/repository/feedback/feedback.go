// Package feedback publishes server-resolution events for the telemetry collaborator.
package feedback

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
)

// store is the consumer interface for the feedback stream (ISP).
type store interface {
	XAdd(ctx context.Context, stream string, fields map[string]string) (string, error)
}

// Sink appends events to <prefix>feedback.
type Sink struct {
	store  store
	stream string
	logger *zap.Logger
}

// New creates a sink. An empty prefix selects domain.KeyPrefix.
func New(s store, prefix string, logger *zap.Logger) *Sink {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Sink{store: s, stream: prefix + "feedback", logger: logger}
}

// Notify records that externalID was resolved to shard, or left unresolved when shard is nil.
// Failures are logged and never returned.
func (s *Sink) Notify(ctx context.Context, externalID string, shard *uint32) {
	server := ""
	if shard != nil {
		server = strconv.FormatUint(uint64(*shard), 10)
	}
	fields := map[string]string{
		"event_id": uuid.NewString(),
		"file":     externalID,
		"server":   server,
	}
	if _, err := s.store.XAdd(ctx, s.stream, fields); err != nil {
		s.logger.Warn("Failed to publish feedback",
			zap.String("file", externalID), zap.String("server", server), zap.Error(err))
	}
}
