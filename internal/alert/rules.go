package alert

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/hamed0406/staffup/internal/domain"
	"github.com/hamed0406/staffup/internal/geo"
)

// Rule is an AlertRule with its covering positions compiled.
type Rule struct {
	Airport          string
	TrafficThreshold int
	Coverage         *Matcher
}

// CompileRules turns configured rules into evaluable ones, failing on the
// first malformed pattern.
func CompileRules(in []domain.AlertRule) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		m, err := NewMatcher(r.CoveringPositions)
		if err != nil {
			return nil, fmt.Errorf("airport %s: %w", r.Airport, err)
		}
		out = append(out, Rule{
			Airport:          r.Airport,
			TrafficThreshold: r.TrafficThreshold,
			Coverage:         m,
		})
	}
	return out, nil
}

// ValidateRules checks that every rule's airport resolves. All failures are
// reported together; errors.Unwrap yields the combined multierr.
func ValidateRules(r geo.Resolver, rules []Rule) error {
	var err error
	for _, rule := range rules {
		if _, ok := r.Lookup(rule.Airport); !ok {
			err = multierr.Append(err, &UnknownAirportError{Airport: rule.Airport})
		}
	}
	if err != nil {
		return fmt.Errorf(`%w (add coordinates under "airports" in the config)`, err)
	}
	return nil
}
