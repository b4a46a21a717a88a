package domain

import (
	"fmt"
	"time"
)

// AlertEvent records one attempt to notify about an unstaffed airport.
type AlertEvent struct {
	Airport   string    `json:"airport"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
	Text      string    `json:"text"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// TransportError wraps a failure talking to the traffic feed or the chat platform.
type TransportError struct {
	Op  string // "fetch", "connect", "send"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
