package v1

import (
	"time"
)

const (
	// MinSpeed is the slowest playback rate in bars per second.
	MinSpeed = 1
	// MaxSpeed is the fastest playback rate in bars per second.
	MaxSpeed = 10

	// DefaultTicker is the instrument a fresh session replays.
	DefaultTicker = "ARSMXN"
	// DefaultInterval is the interval a fresh session replays.
	DefaultInterval = "5m"
	// DefaultSpeed is the playback rate of a fresh session.
	DefaultSpeed = 5
)

// State is the authoritative playback configuration of a session.
// Cursor indexes the flattened loaded bar sequence and stays within [0, loaded].
type State struct {
	Ticker     string
	Interval   string
	AnchorDate time.Time
	Playing    bool
	Speed      int
	Cursor     int
}

// DefaultState returns the state a new session starts with, anchored at the start of today.
func DefaultState(now time.Time) State {
	now = now.UTC()
	return State{
		Ticker:     DefaultTicker,
		Interval:   DefaultInterval,
		AnchorDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Speed:      DefaultSpeed,
	}
}

// Period is the timer period for the current speed.
func (s State) Period() time.Duration {
	speed := s.Speed
	if speed < MinSpeed {
		speed = MinSpeed
	}
	return time.Second / time.Duration(speed)
}

// ValidSpeed reports whether speed is within [MinSpeed, MaxSpeed].
func ValidSpeed(speed int) bool {
	return speed >= MinSpeed && speed <= MaxSpeed
}

// Status is the scheduler state.
type Status string

const (
	// StatusIdle means no timer is running.
	StatusIdle Status = "idle"
	// StatusRunning means the timer is advancing the cursor.
	StatusRunning Status = "running"
	// StatusExhausted means playback caught up with no more data; only a reset leaves it.
	StatusExhausted Status = "exhausted"
)

// NoticeKind classifies a user facing notice.
type NoticeKind string

const (
	// NoticeExhausted reports there is no more data to load.
	NoticeExhausted NoticeKind = "exhausted"
	// NoticeBoundary reports a step back at the first bar.
	NoticeBoundary NoticeKind = "boundary"
	// NoticeTransport reports a failed upstream fetch.
	NoticeTransport NoticeKind = "transport"
)

// Notice is a user visible message raised by the scheduler or a step command.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}
