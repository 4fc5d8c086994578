// Package notify carries the cross-view "data changed" signal. Views that
// show aggregates subscribe and reload when another view reports a write.
package notify

import (
	"encoding/json"
	"strings"
)

// DefaultTopic is the channel used when the config names none.
const DefaultTopic = "ledger-kpi"

// TypeDirty marks data as changed.
const TypeDirty = "dirty"

// Message is the payload sent on a topic.
type Message struct {
	Type string `json:"type"`
}

// Dirty is the message published after every successful write.
var Dirty = Message{Type: TypeDirty}

// Notifier publishes and receives messages on a single topic. Publish never
// blocks the caller; delivery is best effort.
type Notifier interface {
	Publish(Message) error
	Subscribe() (<-chan Message, func())
}

// Noop is used when cross-view notification is disabled.
type Noop struct{}

func (Noop) Publish(Message) error { return nil }

// Subscribe returns a channel that never delivers.
func (Noop) Subscribe() (<-chan Message, func()) {
	return make(chan Message), func() {}
}

// Decode parses one wire payload. Unknown or malformed payloads decode to a
// zero Message and false.
func Decode(b []byte) (Message, bool) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, false
	}
	m.Type = strings.TrimSpace(m.Type)
	return m, m.Type != ""
}
