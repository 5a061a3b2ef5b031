package block

import (
	"context"

	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
)

// Repository resolves files and updates the blocked attribute.
type Repository interface {
	Lookup(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error)
	SetBlocked(ctx context.Context, ids []uint64, blocked bool) (int, error)
}
