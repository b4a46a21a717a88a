// Package geo resolves airport codes to coordinates and measures distances
// between them.
package geo

import (
	_ "embed"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Coord is a latitude/longitude pair in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Resolver maps an airport code to its reference point.
type Resolver interface {
	Lookup(code string) (Coord, bool)
}

//go:embed airports.json
var airportsJSON []byte

// Table is a static, read-only Resolver.
type Table struct {
	m map[string]Coord
}

// NewTable loads the embedded airport table and layers extra on top of it.
// Codes are case-insensitive.
func NewTable(extra map[string][2]float64) (*Table, error) {
	var raw map[string][2]float64
	if err := json.Unmarshal(airportsJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode airport table: %w", err)
	}
	t := &Table{m: make(map[string]Coord, len(raw)+len(extra))}
	for code, ll := range raw {
		t.m[strings.ToUpper(code)] = Coord{Lat: ll[0], Lon: ll[1]}
	}
	for code, ll := range extra {
		if ll[0] < -90 || ll[0] > 90 || ll[1] < -180 || ll[1] > 180 {
			return nil, fmt.Errorf("airport %s: coordinate out of range: %v", code, ll)
		}
		t.m[strings.ToUpper(code)] = Coord{Lat: ll[0], Lon: ll[1]}
	}
	return t, nil
}

func (t *Table) Lookup(code string) (Coord, bool) {
	c, ok := t.m[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Len reports how many airports are known.
func (t *Table) Len() int { return len(t.m) }
