package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers a text message to a chat channel.
type Notifier interface {
	Send(ctx context.Context, channelID uint64, text string) error
}

// Multi sends to every notifier and combines their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, channelID uint64, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, channelID, text))
	}
	return err
}

// Mirrored delivers to Primary and copies the message to each mirror. Only
// the primary's error is returned; mirror failures are logged.
type Mirrored struct {
	Primary Notifier
	Mirrors Multi
	Logger  *zap.Logger
}

func (m *Mirrored) Send(ctx context.Context, channelID uint64, text string) error {
	if err := m.Primary.Send(ctx, channelID, text); err != nil {
		return err
	}
	if err := m.Mirrors.Send(ctx, channelID, text); err != nil && m.Logger != nil {
		m.Logger.Warn("notify_mirror_error", zap.Uint64("channel", channelID), zap.Error(err))
	}
	return nil
}
