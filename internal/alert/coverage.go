package alert

import (
	"fmt"
	"regexp"

	"github.com/hamed0406/staffup/internal/domain"
)

// Matcher holds the precompiled covering-position patterns of one rule.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles patterns. Patterns are unanchored: "SAN_.*TWR" matches
// anywhere inside a callsign.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("covering position %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Covered reports whether any controller callsign matches any pattern, and
// which callsign matched first. Patterns are tried in order; for each pattern
// controllers are scanned in snapshot order.
func (m *Matcher) Covered(controllers []domain.Controller) (bool, string) {
	if m == nil {
		return false, ""
	}
	for _, re := range m.patterns {
		for _, c := range controllers {
			if re.MatchString(c.Callsign) {
				return true, c.Callsign
			}
		}
	}
	return false, ""
}
