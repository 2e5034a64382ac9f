// Package services holds the business logic between the repositories
// and the ws layer.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/acelemming/bubchat/models"
	"github.com/acelemming/bubchat/pkg"
	"github.com/acelemming/bubchat/repository"
)

// ModerationService owns the ban set. The authoritative copy lives in
// memory and every mutation writes through to the repository.
//
// Persistence failures do not roll back the in-memory mutation: the
// room keeps enforcing the ban and storage catches up on the next
// successful write (availability over durability). Callers get the
// write error alongside the applied record.
type ModerationService struct {
	mu   sync.RWMutex
	bans map[string]models.Ban // fingerprint → record
	repo repository.BanRepository
	log  zerolog.Logger
}

// NewModerationService loads the persisted ban set into memory.
func NewModerationService(ctx context.Context, repo repository.BanRepository, log zerolog.Logger) (*ModerationService, error) {
	stored, err := repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	bans := make(map[string]models.Ban, len(stored))
	for _, ban := range stored {
		bans[ban.Fingerprint] = ban
	}

	if len(bans) > 0 {
		log.Info().Int("count", len(bans)).Msg("loaded persisted bans")
	}

	return &ModerationService{
		bans: bans,
		repo: repo,
		log:  log,
	}, nil
}

// Ban inserts or overwrites the record for the fingerprint and writes
// it through. The returned record is valid even when err is non-nil
// (persistence failed but the ban is in effect).
func (s *ModerationService) Ban(ctx context.Context, fingerprint, nickname, actor string) (models.Ban, error) {
	ban := models.Ban{
		Fingerprint: fingerprint,
		Nickname:    nickname,
		BannedBy:    actor,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.bans[fingerprint] = ban
	s.mu.Unlock()

	if err := s.repo.Upsert(ctx, &ban); err != nil {
		s.log.Error().Err(err).Str("fingerprint", fingerprint).Msg("ban not persisted, kept in memory")
		return ban, err
	}

	s.log.Info().Str("fingerprint", fingerprint).Str("actor", actor).Msg("fingerprint banned")
	return ban, nil
}

// Unban removes a record by key. An exact fingerprint match always
// wins; only when no fingerprint matches is the key treated as the
// nickname recorded at ban time, and of several matching records the
// one with the lexicographically smallest fingerprint is removed.
// Returns pkg.ErrNotFound when nothing matches.
func (s *ModerationService) Unban(ctx context.Context, key string) (models.Ban, error) {
	s.mu.Lock()
	ban, ok := s.bans[key]
	if !ok {
		for fp, candidate := range s.bans {
			if candidate.Nickname != key {
				continue
			}
			if !ok || fp < ban.Fingerprint {
				ban, ok = candidate, true
			}
		}
	}
	if ok {
		delete(s.bans, ban.Fingerprint)
	}
	s.mu.Unlock()

	if !ok {
		return models.Ban{}, pkg.ErrNotFound
	}

	if err := s.repo.Delete(ctx, ban.Fingerprint); err != nil {
		s.log.Error().Err(err).Str("fingerprint", ban.Fingerprint).Msg("unban not persisted, kept in memory")
		return ban, err
	}

	s.log.Info().Str("fingerprint", ban.Fingerprint).Msg("fingerprint unbanned")
	return ban, nil
}

// IsBanned reports whether the fingerprint is currently banned.
func (s *ModerationService) IsBanned(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bans[fingerprint]
	return ok
}

// ClearAll empties the ban set in memory and in storage. Only the
// daily reset calls this; records are never expired individually.
func (s *ModerationService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	cleared := len(s.bans)
	s.bans = make(map[string]models.Ban)
	s.mu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("ban reset not persisted, cleared in memory")
		return err
	}

	s.log.Info().Int("cleared", cleared).Msg("ban set cleared")
	return nil
}

// Count returns the number of active bans.
func (s *ModerationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bans)
}
