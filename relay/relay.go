// relay carries grid events (taps, theme toggles) from whichever front end
// produced them to every hive that renders the grid. The local relay keeps
// them in-process; the redis relay lets several processes share one wave.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"honeycomb/honeycomb"
)

// Kind is the type of a grid event.
type Kind string

const (
	KindTap   Kind = "tap"
	KindTheme Kind = "theme"
)

// Event is the unit published on a relay. Col and Row are only meaningful for taps.
type Event struct {
	Kind Kind `json:"kind"`
	Col  int  `json:"col"`
	Row  int  `json:"row"`
	// Source identifies the publishing process, for logging.
	Source string `json:"source,omitempty"`
}

// Tap builds a tap event for addr.
func Tap(addr honeycomb.Address) Event {
	return Event{Kind: KindTap, Col: addr.Col, Row: addr.Row}
}

// Theme builds a theme toggle event.
func Theme() Event {
	return Event{Kind: KindTheme}
}

// Address returns the tapped cell.
func (e Event) Address() honeycomb.Address {
	return honeycomb.Address{Col: e.Col, Row: e.Row}
}

// ErrUnknownKind is returned when decoding an event whose kind is not recognised.
var ErrUnknownKind = errors.New("unknown event kind")

// Encode is the wire form of an event.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses and checks the wire form of an event.
func Decode(payload []byte) (e Event, err error) {
	if err = json.Unmarshal(payload, &e); err != nil {
		err = fmt.Errorf("decode event: %w", err)
		return
	}
	switch e.Kind {
	case KindTap, KindTheme:
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return
}

// Relay is a broadcast bus: every subscriber receives every published event,
// including the publisher's own.
type Relay interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe returns a channel of events that is closed when ctx is done or the relay closes.
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}

// ErrClosed is returned by operations on a closed relay.
var ErrClosed = errors.New("relay closed")
