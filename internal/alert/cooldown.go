package alert

import "time"

// DefaultCooldown is how long an airport stays quiet after a notification.
const DefaultCooldown = 30 * time.Minute

// CooldownTable tracks, per airport, the time before which no new alert may
// fire. It is owned by a single poll loop and is not safe for concurrent use.
type CooldownTable struct {
	until map[string]time.Time
}

func NewCooldownTable() *CooldownTable {
	return &CooldownTable{until: make(map[string]time.Time)}
}

// Active reports whether airport is still cooling down at now.
func (t *CooldownTable) Active(airport string, now time.Time) bool {
	exp, ok := t.until[airport]
	return ok && now.Before(exp)
}

// Evict drops the entry for airport if it has expired at now.
func (t *CooldownTable) Evict(airport string, now time.Time) {
	if exp, ok := t.until[airport]; ok && !now.Before(exp) {
		delete(t.until, airport)
	}
}

// Start puts airport into cooldown until now+d.
func (t *CooldownTable) Start(airport string, now time.Time, d time.Duration) {
	t.until[airport] = now.Add(d)
}

// Expiry returns the stored expiry for airport, if any.
func (t *CooldownTable) Expiry(airport string) (time.Time, bool) {
	exp, ok := t.until[airport]
	return exp, ok
}

func (t *CooldownTable) Len() int { return len(t.until) }

// ActiveAt copies the entries still cooling down at now, for read-only
// consumers on other goroutines. Expired entries are left for Evict.
func (t *CooldownTable) ActiveAt(now time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(t.until))
	for k, v := range t.until {
		if now.Before(v) {
			out[k] = v
		}
	}
	return out
}
