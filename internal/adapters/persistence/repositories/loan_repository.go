package repositories

import (
	"context"
	"errors"
	"time"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository on GORM
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByRefNo gets a loan by reference number with relations
func (r *loanRepository) GetByRefNo(ctx context.Context, refNo string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Where("ref_no = ?", refNo).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// GetOpenLoan gets the oldest open loan for a member/book pair
func (r *loanRepository) GetOpenLoan(ctx context.Context, memberCode, bookCode string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("member_code = ? AND book_code = ? AND returned_at IS NULL", memberCode, bookCode).
		Order("borrowed_at ASC").
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// ListByMember lists all loans of a member, newest first
func (r *loanRepository) ListByMember(ctx context.Context, memberCode string) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("member_code = ?", memberCode).
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// List lists loans with filters and pagination
func (r *loanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if filter.MemberCode != "" {
		query = query.Where("member_code = ?", filter.MemberCode)
	}
	if filter.BookCode != "" {
		query = query.Where("book_code = ?", filter.BookCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Book").
		Order("borrowed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// Close marks a loan returned, guarded so only one transaction can close it
func (r *loanRepository) Close(ctx context.Context, loan *models.Loan) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("ref_no = ? AND returned_at IS NULL", loan.RefNo).
		Updates(map[string]interface{}{
			"returned_at": loan.ReturnedAt,
			"status":      loan.Status,
		})
	return result.RowsAffected > 0, result.Error
}

// CountOverdue counts open loans past their due date
func (r *loanRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("returned_at IS NULL AND due_at < ?", now).
		Count(&count).Error
	return count, err
}
