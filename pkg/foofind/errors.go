package foofind

import "github.com/psyvisions/foofind-web/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedIdentifier = domain.ErrMalformedIdentifier
	ErrSearchUnavailable   = domain.ErrSearchUnavailable
	ErrPartialPlanFailure  = domain.ErrPartialPlanFailure
	ErrMaintenanceMismatch = domain.ErrMaintenanceMismatch
	ErrInvalidRequest      = domain.ErrInvalidRequest
	ErrNotFound            = domain.ErrNotFound
)
