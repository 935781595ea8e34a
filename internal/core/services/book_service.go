package services

import (
	"context"
	"log"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/core/domain"
)

// BookService handles catalogue business logic for books
type BookService struct {
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Code   string `json:"code" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author,omitempty"`
	Stock  int    `json:"stock" validate:"gte=0"`
}

// Create adds a book to the catalogue
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	if input.Code == "" || input.Title == "" || input.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.bookRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrBookAlreadyExists
	}

	book := &models.Book{
		Code:   input.Code,
		Title:  input.Title,
		Author: input.Author,
		Stock:  input.Stock,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book added: %s (%s), stock=%d", book.Code, book.Title, book.Stock)
	return book, nil
}

// GetByCode gets a book by its code
func (s *BookService) GetByCode(ctx context.Context, code string) (*models.Book, error) {
	return s.bookRepo.GetByCode(ctx, code)
}

// List lists a page of the catalogue and the total count
func (s *BookService) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, offset, limit)
}
