package models

import "time"

// Ban is one moderation record, keyed by fingerprint.
//
// Lifecycle: an admin bans a fingerprint, every live connection with
// that fingerprint is force-closed, and reconnection attempts are
// rejected until the record is removed, either by /unban or by the
// daily reset, which clears the whole set at once. Records never
// expire individually.
type Ban struct {
	Fingerprint string    `json:"fingerprint"`
	Nickname    string    `json:"nickname"` // nickname the target used when banned, if known
	BannedBy    string    `json:"banned_by"`
	CreatedAt   time.Time `json:"created_at"`
}
