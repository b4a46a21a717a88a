// Package feed reads live traffic snapshots from the network.
package feed

import (
	"context"

	"github.com/hamed0406/staffup/internal/domain"
)

// Provider returns the current network snapshot.
type Provider interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
}
