package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"booksummary-service/internal/models"
	"booksummary-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	snap     *models.Snapshot
	loadErr  error
	saveErr  error
	saves    int
	lastSave *models.Snapshot
}

func (r *stubRepo) Load(_ context.Context) (*models.Snapshot, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.snap, nil
}

func (r *stubRepo) SaveAll(_ context.Context, snap *models.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.lastSave = snap
	return nil
}

func TestOpenStartsEmptyWhenMissing(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrNotFound}

	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	s.View(func(snap *models.Snapshot) {
		assert.Empty(t, snap.Users)
		assert.Empty(t, snap.Sessions)
		assert.Empty(t, snap.OTPs)
	})
}

func TestOpenDiscardsMalformedSnapshot(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrMalformedSnapshot}

	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	s.View(func(snap *models.Snapshot) {
		assert.Empty(t, snap.Users)
	})
}

func TestOpenFailsOnBackendError(t *testing.T) {
	repo := &stubRepo{loadErr: errors.New("disk on fire")}

	_, err := Open(context.Background(), repo)
	require.Error(t, err)
}

func TestUpdatePersistsWholeSnapshot(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrNotFound}
	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	err = s.Update(context.Background(), func(snap *models.Snapshot) error {
		snap.Users = append(snap.Users, models.UserRecord{ID: "user-1", Username: "alice"})
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.saves)
	require.NotNil(t, repo.lastSave)
	assert.Len(t, repo.lastSave.Users, 1)
	assert.False(t, repo.lastSave.LastUpdated.IsZero())
}

func TestUpdateSkipsWriteWhenNothingChanged(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrNotFound}
	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	err = s.Update(context.Background(), func(snap *models.Snapshot) error {
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, repo.saves)

	// A second identical pass after a real change must not write either.
	require.NoError(t, s.Update(context.Background(), func(snap *models.Snapshot) error {
		snap.Users = append(snap.Users, models.UserRecord{ID: "user-1"})
		return nil
	}))
	require.NoError(t, s.Update(context.Background(), func(snap *models.Snapshot) error {
		return nil
	}))
	assert.Equal(t, 1, repo.saves)
}

func TestUpdateErrorSkipsPersistence(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrNotFound}
	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	boom := errors.New("rejected")
	err = s.Update(context.Background(), func(snap *models.Snapshot) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, repo.saves)
}

func TestUpdateSurfacesSaveFailure(t *testing.T) {
	repo := &stubRepo{loadErr: repository.ErrNotFound}
	s, err := Open(context.Background(), repo)
	require.NoError(t, err)

	repo.saveErr = errors.New("write denied")
	err = s.Update(context.Background(), func(snap *models.Snapshot) error {
		snap.Users = append(snap.Users, models.UserRecord{ID: "user-1"})
		return nil
	})
	require.Error(t, err)

	// The save failed, so the same state must still be considered dirty and
	// retried on the next mutation.
	repo.saveErr = nil
	require.NoError(t, s.Update(context.Background(), func(snap *models.Snapshot) error {
		snap.Users[0].Username = "renamed"
		return nil
	}))
	assert.Equal(t, 1, repo.saves)
}

func TestChecksumIgnoresLastUpdated(t *testing.T) {
	snap := models.NewSnapshot()
	a := checksum(snap)
	snap.LastUpdated = time.Now().UTC()
	b := checksum(snap)
	assert.Equal(t, a, b)
}
