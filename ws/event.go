// Package ws implements the websocket transport and the broadcast hub.
//
// Architecture:
//   - Hub: connection registry and the single serialization point;
//     every state-mutating inbound event passes through its Run loop
//   - Client: one websocket connection with read/write pump goroutines
//   - Event: the envelope exchanged with clients
//
// Because the hub processes inbound events one at a time, every client
// observes broadcast messages and public notices in the same total
// order, stamped with an increasing sequence number.
package ws

import "time"

// Event is the wire envelope. Op names the event kind, Data carries
// the kind-specific payload, Seq is stamped by the hub on outbound
// events so consumers can detect gaps.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server operations.
const (
	// OpMessage carries chat text or a /command from the client.
	OpMessage = "message"
)

// Server → client operations.
const (
	// OpMessageHistory replays the retained history once on accept.
	OpMessageHistory = "message-history"
	// OpMessageNew broadcasts a single committed chat message.
	OpMessageNew = "message"
	// OpSystem is a public notice broadcast to every connection.
	OpSystem = "system"
	// OpSystemPrivate is a notice delivered to one connection only.
	OpSystemPrivate = "system-private"
	// OpClearHistory tells consumers to discard prior message state.
	OpClearHistory = "clear-history"
	// OpForceClose carries a terminal reason; the connection is closed
	// immediately afterwards.
	OpForceClose = "force-close"
)

// MessageData is the payload of an inbound OpMessage.
type MessageData struct {
	Text string `json:"text"`
}

// NoticeData is the payload of system and system-private events.
type NoticeData struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ForceCloseData is the payload of a force-close event.
type ForceCloseData struct {
	Reason string `json:"reason"`
}
