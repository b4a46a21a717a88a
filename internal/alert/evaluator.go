package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/staffup/internal/domain"
	"github.com/hamed0406/staffup/internal/geo"
)

// Sender delivers a text message to a chat channel.
type Sender interface {
	Send(ctx context.Context, channelID uint64, text string) error
}

type Outcome int

const (
	OutcomeCooldown Outcome = iota
	OutcomeBelowThreshold
	OutcomeCovered
	OutcomeFired
	OutcomeSendFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeCovered:
		return "covered"
	case OutcomeFired:
		return "fired"
	case OutcomeSendFailed:
		return "send_failed"
	default:
		return "unknown"
	}
}

// Decision is what happened to one rule in one cycle.
type Decision struct {
	Airport   string
	Outcome   Outcome
	Count     int
	Threshold int
	CoveredBy string
	Text      string
	Err       error
	At        time.Time
}

type EvaluatorConfig struct {
	ChannelID uint64
	Cooldown  time.Duration // DefaultCooldown when zero
	RadiusKm  float64       // MaxDistanceKm when zero
}

type Evaluator struct {
	logger   *zap.Logger
	resolver geo.Resolver
	sender   Sender
	cfg      EvaluatorConfig
	now      func() time.Time
}

func NewEvaluator(logger *zap.Logger, resolver geo.Resolver, sender Sender, cfg EvaluatorConfig) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = MaxDistanceKm
	}
	return &Evaluator{
		logger:   logger,
		resolver: resolver,
		sender:   sender,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Message is the notification text for an unstaffed airport.
func Message(airport string, count, threshold int) string {
	return fmt.Sprintf("Airport %s has %d pilot(s) nearby, above the threshold of %d.", airport, count, threshold)
}

// EvaluateCycle runs every rule against snap in order.
//
// An unknown airport aborts the cycle and is returned as is. Failed sends do
// not start a cooldown; they are combined into the returned error while the
// remaining rules are still evaluated.
func (e *Evaluator) EvaluateCycle(ctx context.Context, rules []Rule, snap domain.Snapshot, table *CooldownTable) ([]Decision, error) {
	decisions := make([]Decision, 0, len(rules))
	var sendErrs error

	for _, rule := range rules {
		now := e.now()
		d := Decision{Airport: rule.Airport, Threshold: rule.TrafficThreshold, At: now}

		if table.Active(rule.Airport, now) {
			e.logger.Debug("alert_in_cooldown", zap.String("airport", rule.Airport))
			d.Outcome = OutcomeCooldown
			decisions = append(decisions, d)
			continue
		}
		table.Evict(rule.Airport, now)

		count, err := CountNearby(e.resolver, snap.Pilots, rule.Airport, e.cfg.RadiusKm)
		if err != nil {
			return decisions, multierr.Append(sendErrs, err)
		}
		d.Count = count
		if count < rule.TrafficThreshold {
			e.logger.Debug("alert_below_threshold",
				zap.String("airport", rule.Airport),
				zap.Int("count", count),
				zap.Int("threshold", rule.TrafficThreshold),
				zap.Float64("radius_km", e.cfg.RadiusKm),
			)
			d.Outcome = OutcomeBelowThreshold
			decisions = append(decisions, d)
			continue
		}

		if ok, by := rule.Coverage.Covered(snap.Controllers); ok {
			e.logger.Debug("alert_covered",
				zap.String("airport", rule.Airport),
				zap.String("callsign", by),
			)
			d.Outcome = OutcomeCovered
			d.CoveredBy = by
			decisions = append(decisions, d)
			continue
		}

		d.Text = Message(rule.Airport, count, rule.TrafficThreshold)
		e.logger.Debug("alert_sending", zap.String("airport", rule.Airport), zap.Int("count", count))
		if err := e.sender.Send(ctx, e.cfg.ChannelID, d.Text); err != nil {
			err = fmt.Errorf("alert %s: %w", rule.Airport, err)
			e.logger.Warn("alert_send_error", zap.String("airport", rule.Airport), zap.Error(err))
			d.Outcome = OutcomeSendFailed
			d.Err = err
			sendErrs = multierr.Append(sendErrs, err)
			decisions = append(decisions, d)
			continue
		}

		table.Start(rule.Airport, e.now(), e.cfg.Cooldown)
		e.logger.Info("alert_sent",
			zap.String("airport", rule.Airport),
			zap.Int("count", count),
			zap.Int("threshold", rule.TrafficThreshold),
		)
		d.Outcome = OutcomeFired
		decisions = append(decisions, d)
	}
	return decisions, sendErrs
}

// IsUnknownAirport reports whether err carries an UnknownAirportError.
func IsUnknownAirport(err error) bool {
	return errors.Is(err, ErrUnknownAirport)
}
