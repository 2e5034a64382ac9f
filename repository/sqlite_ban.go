package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/acelemming/bubchat/models"
)

type sqliteBanRepo struct {
	db *sql.DB
}

// NewSQLiteBanRepo returns the SQLite implementation of BanRepository.
func NewSQLiteBanRepo(db *sql.DB) BanRepository {
	return &sqliteBanRepo{db: db}
}

func (r *sqliteBanRepo) Upsert(ctx context.Context, ban *models.Ban) error {
	query := `
		INSERT INTO bans (fingerprint, nickname, banned_by, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET
			nickname = excluded.nickname,
			banned_by = excluded.banned_by,
			created_at = excluded.created_at`

	if _, err := r.db.ExecContext(ctx, query,
		ban.Fingerprint, ban.Nickname, ban.BannedBy, ban.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert ban: %w", err)
	}
	return nil
}

func (r *sqliteBanRepo) Delete(ctx context.Context, fingerprint string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM bans WHERE fingerprint = ?`, fingerprint,
	); err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}
	return nil
}

func (r *sqliteBanRepo) GetAll(ctx context.Context) ([]models.Ban, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fingerprint, nickname, banned_by, created_at FROM bans ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var ban models.Ban
		if err := rows.Scan(&ban.Fingerprint, &ban.Nickname, &ban.BannedBy, &ban.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		bans = append(bans, ban)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bans: %w", err)
	}

	return bans, nil
}

func (r *sqliteBanRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bans`); err != nil {
		return fmt.Errorf("failed to clear bans: %w", err)
	}
	return nil
}
