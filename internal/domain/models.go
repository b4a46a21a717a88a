package domain

import "time"

// Pilot is a connected aircraft as reported by the traffic feed.
type Pilot struct {
	CID       int     `json:"cid"`
	Callsign  string  `json:"callsign"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  int     `json:"altitude"`
}

// Controller is an active ATC position.
type Controller struct {
	CID       int    `json:"cid"`
	Callsign  string `json:"callsign"`
	Frequency string `json:"frequency"`
	Facility  int    `json:"facility"`
}

// Snapshot is one point-in-time read of the network.
type Snapshot struct {
	Pilots      []Pilot      `json:"pilots"`
	Controllers []Controller `json:"controllers"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// AlertRule describes one monitored airport.
type AlertRule struct {
	Airport           string   `json:"airport" mapstructure:"airport" validate:"required"`
	TrafficThreshold  int      `json:"trafficThreshold" mapstructure:"trafficThreshold" validate:"gte=1"`
	CoveringPositions []string `json:"coveringPositions" mapstructure:"coveringPositions" validate:"dive,required,regexp"`
}
