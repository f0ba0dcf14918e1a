// Package store holds the in-memory identity state behind one lock.
// Concurrent HTTP handlers are serialized so each operation runs to
// completion alone, and every mutating operation ends with one
// whole-snapshot save while the lock is still held.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"booksummary-service/internal/models"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/util"

	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
)

type Store struct {
	mu   sync.Mutex
	snap *models.Snapshot
	repo repository.SnapshotRepository

	// checksum of the last persisted record state; saves are skipped when a
	// mutation turns out to be a no-op.
	lastChecksum uint64
}

// Open loads the snapshot from the repository. A missing document starts
// empty; a malformed one is logged and discarded in favor of a fresh
// bootstrap, never a startup failure.
func Open(ctx context.Context, repo repository.SnapshotRepository) (*Store, error) {
	snap, err := repo.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		snap = models.NewSnapshot()
	case errors.Is(err, repository.ErrMalformedSnapshot):
		util.Warn("Discarding malformed snapshot, starting fresh", zap.Error(err))
		snap = models.NewSnapshot()
	default:
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	s := &Store{snap: snap, repo: repo}
	s.lastChecksum = checksum(snap)

	util.Info("Snapshot loaded",
		util.Int("users", len(snap.Users)),
		util.Int("sessions", len(snap.Sessions)),
		util.Int("otps", len(snap.OTPs)),
	)
	return s, nil
}

// Update runs fn against the live snapshot under the lock and persists the
// whole document afterwards. fn must leave the snapshot untouched when it
// returns an error. A mutation that changes nothing observable skips the
// write.
func (s *Store) Update(ctx context.Context, fn func(*models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snap); err != nil {
		return err
	}

	sum := checksum(s.snap)
	if sum == s.lastChecksum {
		return nil
	}

	s.snap.LastUpdated = time.Now().UTC()
	if err := s.repo.SaveAll(ctx, s.snap); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	s.lastChecksum = sum
	return nil
}

// View runs fn against the snapshot under the lock. fn must not mutate it or
// retain references past the call.
func (s *Store) View(fn func(*models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.snap)
}

// checksum hashes the record state, excluding LastUpdated so that the stamp
// itself never forces a write.
func checksum(snap *models.Snapshot) uint64 {
	records := struct {
		Users    []models.UserRecord    `json:"users"`
		Sessions []models.SessionRecord `json:"sessions"`
		OTPs     []models.OTPRecord     `json:"otps"`
	}{snap.Users, snap.Sessions, snap.OTPs}

	raw, err := json.Marshal(records)
	if err != nil {
		// Snapshot types always marshal; treat failure as "changed".
		return 0
	}
	return murmur3.Sum64(raw)
}
