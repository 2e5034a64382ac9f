// Package models holds the domain data types shared across layers.
package models

// Identity is the (nickname, fingerprint) pair a client presents at
// connection time. Nicknames are not unique; the fingerprint is the
// moderation key.
type Identity struct {
	Nickname    string `json:"nickname"`
	Fingerprint string `json:"fingerprint"`
}

// Valid reports whether both fields are present. Connections carrying
// an invalid identity are closed without a reply.
func (id Identity) Valid() bool {
	return id.Nickname != "" && id.Fingerprint != ""
}
