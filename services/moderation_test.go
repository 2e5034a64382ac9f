package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/acelemming/bubchat/models"
	"github.com/acelemming/bubchat/pkg"
	"github.com/acelemming/bubchat/pkg/logx"
	"github.com/acelemming/bubchat/repository"
)

var errWriteFailed = errors.New("write failed")

// fakeBanRepo is an in-memory BanRepository. failWrites simulates a
// storage outage on mutating calls.
type fakeBanRepo struct {
	mu         sync.Mutex
	bans       map[string]models.Ban
	failWrites bool
}

var _ repository.BanRepository = (*fakeBanRepo)(nil)

func newFakeBanRepo() *fakeBanRepo {
	return &fakeBanRepo{bans: make(map[string]models.Ban)}
}

func (r *fakeBanRepo) Upsert(_ context.Context, ban *models.Ban) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errWriteFailed
	}
	r.bans[ban.Fingerprint] = *ban
	return nil
}

func (r *fakeBanRepo) Delete(_ context.Context, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errWriteFailed
	}
	delete(r.bans, fingerprint)
	return nil
}

func (r *fakeBanRepo) GetAll(_ context.Context) ([]models.Ban, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Ban, 0, len(r.bans))
	for _, ban := range r.bans {
		out = append(out, ban)
	}
	return out, nil
}

func (r *fakeBanRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errWriteFailed
	}
	r.bans = make(map[string]models.Ban)
	return nil
}

func newModeration(t *testing.T, repo repository.BanRepository) *ModerationService {
	t.Helper()
	s, err := NewModerationService(context.Background(), repo, logx.Nop())
	if err != nil {
		t.Fatalf("NewModerationService: %v", err)
	}
	return s
}

func TestBanUnbanRoundTrip(t *testing.T) {
	s := newModeration(t, newFakeBanRepo())
	ctx := context.Background()

	if _, err := s.Ban(ctx, "abc", "Eve", "Owen"); err != nil {
		t.Fatalf("Ban: %v", err)
	}
	if !s.IsBanned("abc") {
		t.Fatal("fingerprint not banned after Ban")
	}

	removed, err := s.Unban(ctx, "abc")
	if err != nil {
		t.Fatalf("Unban: %v", err)
	}
	if removed.Fingerprint != "abc" || removed.BannedBy != "Owen" {
		t.Fatalf("unexpected removed record: %+v", removed)
	}
	if s.IsBanned("abc") {
		t.Fatal("fingerprint still banned after Unban")
	}
}

func TestUnbanNotFound(t *testing.T) {
	s := newModeration(t, newFakeBanRepo())

	_, err := s.Unban(context.Background(), "nobody")
	if !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnbanFingerprintWinsOverNickname(t *testing.T) {
	s := newModeration(t, newFakeBanRepo())
	ctx := context.Background()

	// A record whose nickname collides with another record's key.
	s.Ban(ctx, "abc", "Eve", "Owen")
	s.Ban(ctx, "Eve", "Mallory", "Owen")

	removed, err := s.Unban(ctx, "Eve")
	if err != nil {
		t.Fatalf("Unban: %v", err)
	}
	if removed.Fingerprint != "Eve" {
		t.Fatalf("exact fingerprint match should win, removed %q", removed.Fingerprint)
	}
	if !s.IsBanned("abc") {
		t.Fatal("nickname-matching record removed instead of fingerprint match")
	}
}

func TestUnbanByNicknameDeterministic(t *testing.T) {
	s := newModeration(t, newFakeBanRepo())
	ctx := context.Background()

	s.Ban(ctx, "fp-b", "Eve", "Owen")
	s.Ban(ctx, "fp-a", "Eve", "Owen")

	removed, err := s.Unban(ctx, "Eve")
	if err != nil {
		t.Fatalf("Unban: %v", err)
	}
	if removed.Fingerprint != "fp-a" {
		t.Fatalf("expected smallest fingerprint fp-a, removed %q", removed.Fingerprint)
	}
}

func TestClearAll(t *testing.T) {
	repo := newFakeBanRepo()
	s := newModeration(t, repo)
	ctx := context.Background()

	s.Ban(ctx, "a", "", "Owen")
	s.Ban(ctx, "b", "", "Owen")

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("expected empty ban set, got %d", s.Count())
	}
	if s.IsBanned("a") || s.IsBanned("b") {
		t.Fatal("fingerprints still banned after ClearAll")
	}
	if stored, _ := repo.GetAll(ctx); len(stored) != 0 {
		t.Fatalf("repository not cleared: %d records", len(stored))
	}
}

func TestPersistenceFailureKeepsInMemoryEffect(t *testing.T) {
	repo := newFakeBanRepo()
	repo.failWrites = true
	s := newModeration(t, repo)
	ctx := context.Background()

	if _, err := s.Ban(ctx, "abc", "", "Owen"); !errors.Is(err, errWriteFailed) {
		t.Fatalf("expected propagated write error, got %v", err)
	}
	if !s.IsBanned("abc") {
		t.Fatal("ban rolled back on persistence failure")
	}

	if _, err := s.Unban(ctx, "abc"); !errors.Is(err, errWriteFailed) {
		t.Fatalf("expected propagated write error, got %v", err)
	}
	if s.IsBanned("abc") {
		t.Fatal("unban rolled back on persistence failure")
	}
}

func TestStartupLoadsPersistedBans(t *testing.T) {
	repo := newFakeBanRepo()
	repo.bans["abc"] = models.Ban{Fingerprint: "abc", Nickname: "Eve", BannedBy: "Owen"}

	s := newModeration(t, repo)
	if !s.IsBanned("abc") {
		t.Fatal("persisted ban not loaded at startup")
	}
}
