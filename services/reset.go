package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ResetScheduler clears the ban set at local midnight in one fixed
// reference timezone, indefinitely.
//
// The cron driver computes every activation instant from the current
// wall clock in the reference location, so restarts are harmless (the
// next boundary is simply recomputed) and no drift accumulates from
// repeatedly adding 24h.
type ResetScheduler struct {
	cron       *cron.Cron
	loc        *time.Location
	moderation *ModerationService
	log        zerolog.Logger
}

// NewResetScheduler builds the scheduler for the IANA timezone name.
func NewResetScheduler(timezone string, moderation *ModerationService, log zerolog.Logger) (*ResetScheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load reset timezone %q: %w", timezone, err)
	}

	return &ResetScheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		loc:        loc,
		moderation: moderation,
		log:        log,
	}, nil
}

// Start schedules the daily reset and launches the cron loop.
func (s *ResetScheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", s.fire)
	if err != nil {
		return fmt.Errorf("failed to schedule daily reset: %w", err)
	}

	s.cron.Start()
	s.log.Info().
		Str("timezone", s.loc.String()).
		Time("next", NextReset(time.Now(), s.loc)).
		Msg("daily ban reset scheduled")
	return nil
}

// Stop halts the cron loop and waits for a running reset to finish.
func (s *ResetScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ResetScheduler) fire() {
	active := s.moderation.Count()
	if err := s.moderation.ClearAll(context.Background()); err != nil {
		// In-memory set is already empty; storage catches up later.
		s.log.Error().Err(err).Msg("daily reset completed with persistence error")
	}

	s.log.Info().
		Int("cleared", active).
		Time("next", NextReset(time.Now(), s.loc)).
		Msg("midnight reset complete, bans cleared")
}

// NextReset returns the next midnight boundary in loc strictly after
// now, as an absolute instant. At exactly midnight the following day's
// boundary is returned. When a DST transition makes local midnight
// nonexistent, time.Date resolves to the instant the clock actually
// reaches that day.
func NextReset(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
