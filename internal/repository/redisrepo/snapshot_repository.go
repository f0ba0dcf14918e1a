// Package redisrepo is the optional redis snapshot backend. It keeps the
// exact document shape and key names of the file backend, just hosted in
// redis, so the two are interchangeable behind the repository interfaces.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booksummary-service/internal/client"
	"booksummary-service/internal/models"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/util"

	"go.uber.org/zap"
)

type Repository struct {
	client *client.RedisClient
}

func NewRepository(c *client.RedisClient) *Repository {
	return &Repository{client: c}
}

func (r *Repository) Load(ctx context.Context) (*models.Snapshot, error) {
	raw, migrated, err := r.getWithFallback(ctx, repository.SnapshotKey, repository.LegacySnapshotKey)
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

func (r *Repository) SaveAll(ctx context.Context, snap *models.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return r.client.Set(ctx, repository.SnapshotKey, raw)
}

func (r *Repository) LoadBooks(ctx context.Context) ([]models.Book, error) {
	raw, migrated, err := r.getWithFallback(ctx, repository.BooksKey, repository.LegacyBooksKey)
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

func (r *Repository) SaveBooks(ctx context.Context, books []models.Book) error {
	if books == nil {
		books = []models.Book{}
	}
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to encode books: %w", err)
	}
	return r.client.Set(ctx, repository.BooksKey, raw)
}

func (r *Repository) getWithFallback(ctx context.Context, key, legacyKey string) (raw []byte, migrated bool, err error) {
	raw, err = r.client.Get(ctx, key)
	if err == nil {
		return raw, false, nil
	}
	if !errors.Is(err, client.ErrKeyNotFound) {
		return nil, false, err
	}

	raw, err = r.client.Get(ctx, legacyKey)
	if err == nil {
		return raw, true, nil
	}
	if !errors.Is(err, client.ErrKeyNotFound) {
		return nil, false, err
	}
	return nil, false, repository.ErrNotFound
}
