package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/staffup/internal/alert"
	"github.com/hamed0406/staffup/internal/domain"
	"github.com/hamed0406/staffup/internal/feed"
	"github.com/hamed0406/staffup/internal/metrics"
	"github.com/hamed0406/staffup/internal/repo"
)

// DefaultInterval is the pause between the end of one cycle and the start of
// the next.
const DefaultInterval = 1 * time.Minute

// Status is a read-only copy of the loop state, published after every cycle.
type Status struct {
	Cycles      int                  `json:"cycles"`
	LastCycle   time.Time            `json:"last_cycle"`
	Pilots      int                  `json:"pilots"`
	Controllers int                  `json:"controllers"`
	Rules       int                  `json:"rules"`
	Cooldowns   map[string]time.Time `json:"cooldowns"`
	LastError   string               `json:"last_error,omitempty"`
}

type Poller struct {
	Logger    *zap.Logger
	Feed      feed.Provider
	Evaluator *alert.Evaluator
	Rules     []alert.Rule
	Interval  time.Duration
	Metrics   *metrics.Metrics // optional
	Log       repo.AlertLog    // optional

	mu     sync.RWMutex
	status Status
}

func NewPoller(
	logger *zap.Logger,
	provider feed.Provider,
	ev *alert.Evaluator,
	rules []alert.Rule,
	interval time.Duration,
) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		Logger:    logger,
		Feed:      provider,
		Evaluator: ev,
		Rules:     rules,
		Interval:  interval,
		status:    Status{Rules: len(rules), Cooldowns: map[string]time.Time{}},
	}
}

// Run evaluates the rules once per interval until ctx is cancelled. Cycles
// never overlap; a slow fetch delays the next one.
func (p *Poller) Run(ctx context.Context) error {
	table := alert.NewCooldownTable()
	p.Logger.Info("poller_started",
		zap.Int("rules", len(p.Rules)),
		zap.Duration("interval", p.Interval),
	)

	for {
		_ = p.runOnce(ctx, table)

		t := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			p.Logger.Info("poller_stopped")
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Status returns the state published by the last cycle.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st := p.status
	st.Cooldowns = make(map[string]time.Time, len(p.status.Cooldowns))
	for k, v := range p.status.Cooldowns {
		st.Cooldowns[k] = v
	}
	return st
}

func (p *Poller) runOnce(ctx context.Context, table *alert.CooldownTable) error {
	start := time.Now()
	snap, err := p.Feed.Fetch(ctx)
	p.Metrics.ObserveFetch(start)
	if err != nil {
		p.Logger.Warn("poll_fetch_error", zap.Error(err))
		p.publish(domain.Snapshot{}, table, err)
		return err
	}

	decisions, err := p.Evaluator.EvaluateCycle(ctx, p.Rules, snap, table)
	for _, d := range decisions {
		p.Metrics.Decision(d.Outcome.String(), d.Airport)
		p.record(ctx, d)
	}
	switch {
	case err == nil:
	case alert.IsUnknownAirport(err):
		p.Logger.Warn("poll_unknown_airport", zap.Error(err))
	default:
		p.Logger.Warn("poll_send_errors", zap.Error(err))
	}

	p.Logger.Info("poll_cycle_done",
		zap.Int("pilots", len(snap.Pilots)),
		zap.Int("controllers", len(snap.Controllers)),
		zap.Int("decisions", len(decisions)),
		zap.Int("cooldowns", len(table.ActiveAt(time.Now()))),
		zap.Duration("took", time.Since(start)),
	)
	p.publish(snap, table, err)
	return err
}

func (p *Poller) record(ctx context.Context, d alert.Decision) {
	if p.Log == nil {
		return
	}
	if d.Outcome != alert.OutcomeFired && d.Outcome != alert.OutcomeSendFailed {
		return
	}
	ev := domain.AlertEvent{
		Airport:   d.Airport,
		Count:     d.Count,
		Threshold: d.Threshold,
		Text:      d.Text,
		Delivered: d.Outcome == alert.OutcomeFired,
		SentAt:    d.At.UTC(),
	}
	if d.Err != nil {
		ev.Error = d.Err.Error()
	}
	if err := p.Log.Append(ctx, ev); err != nil {
		p.Logger.Warn("alert_log_append_error", zap.String("airport", d.Airport), zap.Error(err))
	}
}

func (p *Poller) publish(snap domain.Snapshot, table *alert.CooldownTable, err error) {
	now := time.Now()
	active := table.ActiveAt(now)
	p.Metrics.Cycle(err, len(active))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	p.status.LastCycle = now.UTC()
	p.status.Pilots = len(snap.Pilots)
	p.status.Controllers = len(snap.Controllers)
	p.status.Rules = len(p.Rules)
	p.status.Cooldowns = active
	p.status.LastError = ""
	if err != nil {
		p.status.LastError = err.Error()
	}
}
