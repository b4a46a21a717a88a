package repo

import (
	"context"

	"github.com/hamed0406/staffup/internal/domain"
)

// AlertLog keeps a history of alert attempts for the status API.
type AlertLog interface {
	Append(ctx context.Context, ev domain.AlertEvent) error
	// Recent returns up to n events, newest first.
	Recent(ctx context.Context, n int) ([]domain.AlertEvent, error)
}
