// Package repository defines the persistence boundary: a snapshot store for
// the identity records and a separate document for the book catalog. Both
// follow the load-wholesale / save-wholesale contract; an implementation may
// write incrementally underneath as long as the contract holds.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booksummary-service/internal/models"
)

// Storage keys, shared by every backend. The legacy keys are read once on
// first load and the document is rewritten under the current key.
const (
	SnapshotKey       = "localExcelDatabase"
	LegacySnapshotKey = "excelDatabase"
	BooksKey          = "books"
	LegacyBooksKey    = "bookSummaries"
)

var (
	// ErrNotFound means no document exists under the current or legacy key.
	ErrNotFound = errors.New("document not found")
	// ErrMalformedSnapshot means the persisted document does not have the
	// expected shape. Callers fall back to a fresh seed bootstrap.
	ErrMalformedSnapshot = errors.New("malformed snapshot document")
)

// SnapshotRepository persists the identity snapshot.
type SnapshotRepository interface {
	// Load reads the current snapshot, migrating from the legacy key when
	// only that exists. Returns ErrNotFound when neither key holds data and
	// ErrMalformedSnapshot (wrapped) when the document cannot be decoded.
	Load(ctx context.Context) (*models.Snapshot, error)
	// SaveAll overwrites the whole snapshot. Last write wins.
	SaveAll(ctx context.Context, snap *models.Snapshot) error
}

// BookRepository persists the book catalog.
type BookRepository interface {
	LoadBooks(ctx context.Context) ([]models.Book, error)
	SaveBooks(ctx context.Context, books []models.Book) error
}

// DecodeSnapshot validates shape for every backend: the document must be an
// object carrying a users array. Missing sessions/otps arrays normalize to
// empty, matching the leniency of the legacy loader.
func DecodeSnapshot(raw []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.Users == nil {
		return nil, fmt.Errorf("%w: missing users array", ErrMalformedSnapshot)
	}
	if snap.Sessions == nil {
		snap.Sessions = []models.SessionRecord{}
	}
	if snap.OTPs == nil {
		snap.OTPs = []models.OTPRecord{}
	}
	return &snap, nil
}
