package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// ClaimsVersionCache tracks counters used to detect stale principal claims.
type ClaimsVersionCache interface {
	Current(ctx context.Context, userID string) (domain.ClaimsStamp, error)
	BumpGlobal(ctx context.Context) (int64, error)
	BumpUser(ctx context.Context, userID string) (int64, error)
}
