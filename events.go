package paygate

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tendermint/tendermint/libs/common"
)

// EventTag is the tag key that announces the type of the event that the
// following attribute tags belong to.
const EventTag = "event"

// Event is a notification emitted by a handler on a successful state
// transition. Events are append-only and allow external observers to
// reconstruct the history without reading the storage.
type Event struct {
	Type       string
	Attributes []common.KVPair
}

// NewEvent returns an event of given type, without any attributes.
func NewEvent(typ string) Event {
	return Event{Type: typ}
}

// With returns a copy of the event with an attribute appended.
func (e Event) With(key, value string) Event {
	attrs := make([]common.KVPair, len(e.Attributes), len(e.Attributes)+1)
	copy(attrs, e.Attributes)
	e.Attributes = append(attrs, common.KVPair{Key: []byte(key), Value: []byte(value)})
	return e
}

// WithBytes returns a copy of the event with a binary attribute appended.
// The value is hex encoded.
func (e Event) WithBytes(key string, value []byte) Event {
	return e.With(key, strings.ToUpper(hex.EncodeToString(value)))
}

// WithValue returns a copy of the event with an attribute appended. The
// value is serialized using its String method.
func (e Event) WithValue(key string, value fmt.Stringer) Event {
	return e.With(key, value.String())
}

// Attr returns the value of the first attribute with given key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if string(a.Key) == key {
			return string(a.Value), true
		}
	}
	return "", false
}

// Tags flattens this event into a list of tags. The first tag always
// declares the event type, each attribute key is prefixed with the type.
func (e Event) Tags() []common.KVPair {
	tags := make([]common.KVPair, 0, len(e.Attributes)+1)
	tags = append(tags, common.KVPair{Key: []byte(EventTag), Value: []byte(e.Type)})
	for _, a := range e.Attributes {
		tags = append(tags, common.KVPair{
			Key:   []byte(e.Type + "." + string(a.Key)),
			Value: a.Value,
		})
	}
	return tags
}

// EventsFromTags is the reverse of Event.Tags. It reconstructs the list of
// events from a flat list of tags. Tags that do not belong to any event are
// ignored.
func EventsFromTags(tags []common.KVPair) []Event {
	var (
		events []Event
		cur    *Event
	)
	for _, t := range tags {
		if string(t.Key) == EventTag {
			events = append(events, NewEvent(string(t.Value)))
			cur = &events[len(events)-1]
			continue
		}
		if cur == nil {
			continue
		}
		prefix := cur.Type + "."
		if !strings.HasPrefix(string(t.Key), prefix) {
			continue
		}
		*cur = cur.With(strings.TrimPrefix(string(t.Key), prefix), string(t.Value))
	}
	return events
}
