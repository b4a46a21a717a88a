package alert

import (
	"errors"
	"fmt"

	"github.com/hamed0406/staffup/internal/domain"
	"github.com/hamed0406/staffup/internal/geo"
)

// MaxDistanceKm is the radius around an airport's reference point in which
// pilots count as nearby.
const MaxDistanceKm = 5.0

// ErrUnknownAirport matches any UnknownAirportError via errors.Is.
var ErrUnknownAirport = errors.New("unknown airport")

// UnknownAirportError reports an airport code missing from the resolver.
type UnknownAirportError struct {
	Airport string
}

func (e *UnknownAirportError) Error() string {
	return fmt.Sprintf("unknown airport %s", e.Airport)
}

func (e *UnknownAirportError) Is(target error) bool { return target == ErrUnknownAirport }

// CountNearby returns how many pilots are within radiusKm (inclusive) of airport.
func CountNearby(r geo.Resolver, pilots []domain.Pilot, airport string, radiusKm float64) (int, error) {
	center, ok := r.Lookup(airport)
	if !ok {
		return 0, &UnknownAirportError{Airport: airport}
	}
	n := 0
	for _, p := range pilots {
		if geo.DistanceKm(geo.Coord{Lat: p.Latitude, Lon: p.Longitude}, center) <= radiusKm {
			n++
		}
	}
	return n, nil
}
