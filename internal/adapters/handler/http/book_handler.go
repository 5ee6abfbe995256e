package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

type createBookRequest struct {
	Title         string     `json:"title"`
	ISBN          string     `json:"isbn"`
	DatePublished *time.Time `json:"date_published"`
	Pages         int        `json:"pages"`
	Overview      string     `json:"overview"`
	Image         string     `json:"image"`
	Synopsis      string     `json:"synopsis"`
	Authors       []string   `json:"authors"`
}

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	book, err := h.service.Create(r.Context(), ports.CreateBookInput{
		Title:         req.Title,
		ISBN:          req.ISBN,
		DatePublished: req.DatePublished,
		Pages:         req.Pages,
		Overview:      req.Overview,
		Image:         req.Image,
		Synopsis:      req.Synopsis,
		Authors:       req.Authors,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing book id", http.StatusBadRequest)
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListBooks(r.Context(), ports.ListBooksInput{Page: page, Limit: limit})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type trackBookRequest struct {
	BookID        uuid.UUID  `json:"book_id"`
	Owned         bool       `json:"owned"`
	ReadingStatus string     `json:"reading_status"`
	Review        string     `json:"review"`
	Rating        *int       `json:"rating"`
	Progress      *int       `json:"progress"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
}

func (h *BookHandler) TrackBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req trackBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userBook, err := h.service.TrackBook(r.Context(), userID, ports.UpsertUserBookInput{
		BookID:        req.BookID,
		Owned:         req.Owned,
		ReadingStatus: domain.ReadingStatus(req.ReadingStatus),
		Review:        req.Review,
		Rating:        req.Rating,
		Progress:      req.Progress,
		StartedAt:     req.StartedAt,
		FinishedAt:    req.FinishedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userBook)
}

func (h *BookHandler) Shelf(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	userBooks, err := h.service.Shelf(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userBooks)
}
