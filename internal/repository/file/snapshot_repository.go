// Package file is the default snapshot backend: one JSON document per key in
// a local directory, the closest server-side analog of the browser-local
// storage the data model grew up in.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"booksummary-service/internal/models"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/util"

	"go.uber.org/zap"
)

// Repository stores each document as <dir>/<key>.json. Writes go through a
// temp file and rename so a crash never leaves a half-written snapshot.
type Repository struct {
	dir string
}

func NewRepository(dir string) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &Repository{dir: dir}, nil
}

func (r *Repository) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

// Load reads the snapshot from the current key, falling back to the legacy
// key and rewriting under the current one when only the legacy file exists.
func (r *Repository) Load(ctx context.Context) (*models.Snapshot, error) {
	raw, migrated, err := r.readWithFallback(repository.SnapshotKey, repository.LegacySnapshotKey)
	if err != nil {
		return nil, err
	}

	snap, err := repository.DecodeSnapshot(raw)
	if err != nil {
		return nil, err
	}

	if migrated {
		if err := r.SaveAll(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to rewrite legacy snapshot: %w", err)
		}
		util.Info("Migrated snapshot from legacy key",
			zap.String("legacy_key", repository.LegacySnapshotKey),
			zap.String("key", repository.SnapshotKey),
		)
	}
	return snap, nil
}

// SaveAll overwrites the whole snapshot document.
func (r *Repository) SaveAll(_ context.Context, snap *models.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return r.writeAtomic(repository.SnapshotKey, raw)
}

// LoadBooks reads the catalog, honoring the legacy key the same way.
func (r *Repository) LoadBooks(ctx context.Context) ([]models.Book, error) {
	raw, migrated, err := r.readWithFallback(repository.BooksKey, repository.LegacyBooksKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Book{}, nil
		}
		return nil, err
	}

	var books []models.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedSnapshot, err)
	}
	if books == nil {
		books = []models.Book{}
	}

	if migrated {
		if err := r.SaveBooks(ctx, books); err != nil {
			return nil, fmt.Errorf("failed to rewrite legacy book document: %w", err)
		}
	}
	return books, nil
}

func (r *Repository) SaveBooks(_ context.Context, books []models.Book) error {
	if books == nil {
		books = []models.Book{}
	}
	raw, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode books: %w", err)
	}
	return r.writeAtomic(repository.BooksKey, raw)
}

// readWithFallback returns the document under key, or under legacyKey with
// migrated=true, or ErrNotFound.
func (r *Repository) readWithFallback(key, legacyKey string) (raw []byte, migrated bool, err error) {
	raw, err = os.ReadFile(r.path(key))
	if err == nil {
		return raw, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	raw, err = os.ReadFile(r.path(legacyKey))
	if err == nil {
		return raw, true, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("failed to read %s: %w", legacyKey, err)
	}
	return nil, false, repository.ErrNotFound
}

func (r *Repository) writeAtomic(key string, raw []byte) error {
	final := r.path(key)
	tmp, err := os.CreateTemp(r.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
