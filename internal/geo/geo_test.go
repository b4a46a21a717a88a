package geo

import (
	"math"
	"testing"
)

func TestNewTable_LooksUpEmbeddedAirports(t *testing.T) {
	tbl, err := NewTable(nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	c, ok := tbl.Lookup("klax")
	if !ok {
		t.Fatalf("KLAX should resolve")
	}
	if math.Abs(c.Lat-33.9425) > 0.01 || math.Abs(c.Lon+118.408) > 0.01 {
		t.Fatalf("KLAX coord off: %+v", c)
	}
	if _, ok := tbl.Lookup("ZZZZ"); ok {
		t.Fatalf("ZZZZ should not resolve")
	}
}

func TestNewTable_ExtraOverridesAndValidates(t *testing.T) {
	tbl, err := NewTable(map[string][2]float64{"kxyz": {10, 20}, "KLAX": {1, 2}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if c, ok := tbl.Lookup("KXYZ"); !ok || c.Lat != 10 || c.Lon != 20 {
		t.Fatalf("extra airport missing: %+v %v", c, ok)
	}
	if c, _ := tbl.Lookup("KLAX"); c.Lat != 1 {
		t.Fatalf("override not applied: %+v", c)
	}

	if _, err := NewTable(map[string][2]float64{"BAD": {91, 0}}); err == nil {
		t.Fatalf("want error for out-of-range latitude")
	}
}

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name    string
		a, b    Coord
		want    float64
		epsilon float64
	}{
		{"same point", Coord{33.94, -118.40}, Coord{33.94, -118.40}, 0, 1e-9},
		{"one degree latitude", Coord{0, 0}, Coord{1, 0}, 111.19, 0.01},
		{"LAX to SAN", Coord{33.942501, -118.407997}, Coord{32.733601, -117.190002}, 175.0, 2.0},
	}
	for _, c := range cases {
		got := DistanceKm(c.a, c.b)
		if math.Abs(got-c.want) > c.epsilon {
			t.Fatalf("%s: DistanceKm=%.3f want %.3f±%.3f", c.name, got, c.want, c.epsilon)
		}
		if back := DistanceKm(c.b, c.a); math.Abs(back-got) > 1e-9 {
			t.Fatalf("%s: not symmetric: %v vs %v", c.name, got, back)
		}
	}
}
