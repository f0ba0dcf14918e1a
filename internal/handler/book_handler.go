package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"booksummary-service/internal/service"
	"booksummary-service/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookHandler exposes the catalog CRUD.
type BookHandler struct {
	bookService *service.BookService
	logger      *zap.Logger
}

func NewBookHandler(bookService *service.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{bookService: bookService, logger: logger}
}

func (h *BookHandler) RegisterRoutes(router chi.Router) {
	router.Route("/books", func(r chi.Router) {
		r.Get("/", h.ListBooks)
		r.Post("/", h.AddBook)
		r.Delete("/{bookID}", h.DeleteBook)
	})
}

// ListBooks supports ?q= substring filter, ?genre= exact filter and ?sort=
// one of date-asc|date-desc|title-asc|title-desc|rating-asc|rating-desc.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := service.BookFilter{
		Query:  r.URL.Query().Get("q"),
		Genre:  r.URL.Query().Get("genre"),
		SortBy: r.URL.Query().Get("sort"),
	}
	books := h.bookService.ListBooks(filter)
	h.respondWithJSON(w, http.StatusOK, successResponse(books, "Books retrieved"))
}

func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req service.BookCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, errorResponse(err, "Invalid request body"))
		return
	}

	book, err := h.bookService.AddBook(r.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.respondWithJSON(w, status, errorResponse(err, "Failed to add book"))
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(book, "Book added successfully"))
	h.logger.Info("Book added via HTTP", util.String("book_id", book.ID))
}

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")

	if err := h.bookService.DeleteBook(r.Context(), bookID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrBookNotFound) {
			status = http.StatusNotFound
		}
		h.respondWithJSON(w, status, errorResponse(err, "Failed to delete book"))
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(nil, "Book deleted successfully"))
}

func (h *BookHandler) respondWithJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
