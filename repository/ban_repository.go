package repository

import (
	"context"

	"github.com/acelemming/bubchat/models"
)

// BanRepository is the durable store for ban records. The moderation
// service keeps the authoritative copy in memory and writes through;
// the repository is only read in full at startup.
type BanRepository interface {
	// Upsert inserts or overwrites the record for ban.Fingerprint.
	Upsert(ctx context.Context, ban *models.Ban) error

	// Delete removes the record for the fingerprint. Deleting a
	// missing record is not an error.
	Delete(ctx context.Context, fingerprint string) error

	// GetAll returns every stored record.
	GetAll(ctx context.Context) ([]models.Ban, error)

	// DeleteAll empties the store. Used by the daily reset.
	DeleteAll(ctx context.Context) error
}
