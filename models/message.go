package models

import "time"

// Message is a single chat message. Immutable once created; retained
// copies live in the history buffer until evicted or purged.
type Message struct {
	Nickname  string    `json:"nickname"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}
