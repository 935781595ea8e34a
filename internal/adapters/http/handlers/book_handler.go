package handlers

import (
	"errors"
	"strings"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"
	"liblend/internal/core/services"
	"liblend/internal/pkg/pagination"
	"liblend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book catalogue endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// CreateBookRequest represents create book request
type CreateBookRequest struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Stock  int    `json:"stock"`
}

// Create adds a book to the catalogue
// @Summary Add book
// @Description Add a new book to the catalogue (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Code == "" {
		return response.BadRequest(c, "Book code is required")
	}
	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Stock < 0 {
		return response.BadRequest(c, "Stock must not be negative")
	}

	input := &services.CreateBookInput{
		Code:   strings.TrimSpace(req.Code),
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Stock:  req.Stock,
	}

	book, err := h.bookService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookAlreadyExists):
			return response.Conflict(c, "Book code already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid book data")
		default:
			return response.InternalServerError(c, "Failed to add book")
		}
	}

	return response.Created(c, "Book added successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// List lists books
// @Summary List books
// @Description List the book catalogue
// @Tags Books
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	items, total, err := h.bookService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	books := make([]*models.BookResponse, 0, len(items))
	for _, b := range items {
		books = append(books, b.ToResponse())
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// GetByCode gets a book by its code
// @Summary Get book by code
// @Description Get a specific book
// @Tags Books
// @Accept json
// @Produce json
// @Param code path string true "Book code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{code} [get]
func (h *BookHandler) GetByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	book, err := h.bookService.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}
