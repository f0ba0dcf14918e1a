package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"booksummary-service/internal/models"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrBookNotFound = errors.New("book not found")

// Sort modes accepted by ListBooks.
const (
	SortDateDesc   = "date-desc"
	SortDateAsc    = "date-asc"
	SortTitleAsc   = "title-asc"
	SortTitleDesc  = "title-desc"
	SortRatingDesc = "rating-desc"
	SortRatingAsc  = "rating-asc"
)

// BookService is the catalog: a flat list persisted under its own key,
// completely independent of the identity records.
type BookService struct {
	mu     sync.Mutex
	books  []models.Book
	repo   repository.BookRepository
	logger *zap.Logger
}

func NewBookService(ctx context.Context, repo repository.BookRepository, logger *zap.Logger) (*BookService, error) {
	books, err := repo.LoadBooks(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrMalformedSnapshot) {
			util.Warn("Discarding malformed book document, starting empty", zap.Error(err))
			books = []models.Book{}
		} else {
			return nil, fmt.Errorf("failed to load books: %w", err)
		}
	}
	return &BookService{books: books, repo: repo, logger: logger}, nil
}

type BookCreateRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Genre    string `json:"genre"`
	Rating   int    `json:"rating"`
	Summary  string `json:"summary"`
	DateRead string `json:"dateRead"`
	AddedBy  string `json:"addedBy"`
}

// AddBook inserts at the front of the list, newest first.
func (s *BookService) AddBook(ctx context.Context, req *BookCreateRequest) (*models.Book, error) {
	if req.Title == "" || req.Author == "" || req.Genre == "" || req.Summary == "" {
		return nil, fmt.Errorf("%w: title, author, genre and summary are required", ErrInvalidInput)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	book := models.Book{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		Rating:    req.Rating,
		Summary:   req.Summary,
		DateRead:  req.DateRead,
		DateAdded: time.Now().UTC(),
		AddedBy:   req.AddedBy,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append([]models.Book{book}, s.books...)
	if err := s.repo.SaveBooks(ctx, s.books); err != nil {
		s.books = s.books[1:]
		return nil, err
	}

	s.logger.Info("Book added",
		util.String("book_id", book.ID),
		util.String("title", book.Title),
	)
	return &book, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.books {
		if s.books[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBookNotFound
	}

	removed := s.books[idx]
	s.books = append(s.books[:idx:idx], s.books[idx+1:]...)
	if err := s.repo.SaveBooks(ctx, s.books); err != nil {
		s.books = append(s.books[:idx:idx], append([]models.Book{removed}, s.books[idx:]...)...)
		return err
	}

	s.logger.Info("Book deleted", util.String("book_id", id))
	return nil
}

// BookFilter narrows and orders the listing. Query is a case-insensitive
// substring match over title, author, genre and summary; Genre is an exact
// match; SortBy defaults to newest first.
type BookFilter struct {
	Query  string
	Genre  string
	SortBy string
}

func (s *BookService) ListBooks(filter BookFilter) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(filter.Query)
	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if query != "" && !matchesQuery(&b, query) {
			continue
		}
		out = append(out, b)
	}

	sortBooks(out, filter.SortBy)
	return out
}

func matchesQuery(b *models.Book, query string) bool {
	return strings.Contains(strings.ToLower(b.Title), query) ||
		strings.Contains(strings.ToLower(b.Author), query) ||
		strings.Contains(strings.ToLower(b.Genre), query) ||
		strings.Contains(strings.ToLower(b.Summary), query)
}

func sortBooks(books []models.Book, mode string) {
	switch mode {
	case SortDateAsc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].DateAdded.Before(books[j].DateAdded) })
	case SortTitleAsc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	case SortTitleDesc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Title > books[j].Title })
	case SortRatingDesc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Rating > books[j].Rating })
	case SortRatingAsc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Rating < books[j].Rating })
	default: // SortDateDesc
		sort.SliceStable(books, func(i, j int) bool { return books[i].DateAdded.After(books[j].DateAdded) })
	}
}
