package repositories

import (
	"context"
	"errors"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"

	"gorm.io/gorm"
)

// bookRepository implements BookRepository on GORM
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByCode gets a book by its code
func (r *bookRepository) GetByCode(ctx context.Context, code string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ExistsByCode checks if a book code is already taken
func (r *bookRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// List lists books with pagination
func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	r.db.WithContext(ctx).Model(&models.Book{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("code ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// DecrementStock atomically takes one copy off the shelf.
// The WHERE guard keeps stock from ever going negative, even when two
// borrows race past their availability check.
func (r *bookRepository) DecrementStock(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("code = ? AND stock >= 1", code).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	return res.RowsAffected > 0, res.Error
}

// IncrementStock atomically puts one copy back on the shelf
func (r *bookRepository) IncrementStock(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("code = ?", code).
		UpdateColumn("stock", gorm.Expr("stock + 1"))
	return res.RowsAffected > 0, res.Error
}
