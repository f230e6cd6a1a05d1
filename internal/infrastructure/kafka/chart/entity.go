package chart

import (
	"encoding/json"

	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	playbackv1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
)

// EventType is the kind of chart event.
type EventType string

const (
	// EventSetData replaces everything drawn.
	EventSetData EventType = "set_data"
	// EventUpdate draws a single bar.
	EventUpdate EventType = "update"
	// EventNotice carries a user notice.
	EventNotice EventType = "notice"
)

// Event is the wire format of one chart event.
type Event struct {
	SessionID string             `json:"session_id"`
	Type      EventType          `json:"type"`
	Bars      []barv1.Bar        `json:"bars,omitempty"`
	Bar       *barv1.Bar         `json:"bar,omitempty"`
	Notice    *playbackv1.Notice `json:"notice,omitempty"`
}

// ToBytes encodes the event as JSON.
func (e Event) ToBytes() ([]byte, error) {
	return json.Marshal(e)
}
