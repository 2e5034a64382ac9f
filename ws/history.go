package ws

import "github.com/acelemming/bubchat/models"

// HistoryBuffer retains the most recent broadcast messages in
// insertion order, bounded by a fixed capacity. Not safe for
// concurrent use; it is owned by the hub goroutine.
type HistoryBuffer struct {
	messages []models.Message
	capacity int
}

// NewHistoryBuffer creates a buffer holding at most capacity messages.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	return &HistoryBuffer{
		messages: make([]models.Message, 0, capacity),
		capacity: capacity,
	}
}

// Append inserts at the tail, evicting from the head once full.
func (b *HistoryBuffer) Append(msg models.Message) {
	if len(b.messages) == b.capacity {
		copy(b.messages, b.messages[1:])
		b.messages = b.messages[:len(b.messages)-1]
	}
	b.messages = append(b.messages, msg)
}

// Snapshot returns the retained messages oldest-first. The slice is a
// copy; callers may hold it across later mutations.
func (b *HistoryBuffer) Snapshot() []models.Message {
	out := make([]models.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Clear discards all retained messages.
func (b *HistoryBuffer) Clear() {
	b.messages = b.messages[:0]
}

// Len returns the number of retained messages.
func (b *HistoryBuffer) Len() int {
	return len(b.messages)
}
