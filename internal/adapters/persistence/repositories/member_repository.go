package repositories

import (
	"context"
	"errors"
	"time"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository on GORM
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByCode gets a member by member code
func (r *memberRepository) GetByCode(ctx context.Context, code string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ExistsByCode checks if a member code is already taken
func (r *memberRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	r.db.WithContext(ctx).Model(&models.Member{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("code ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// IncrementBorrowed atomically bumps the borrowed counter.
// The WHERE guard re-checks the limit and the penalty flag at commit time,
// so concurrent borrows cannot push the counter past the limit.
func (r *memberRepository) IncrementBorrowed(ctx context.Context, code string, limit int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("code = ? AND borrowed_books_count < ? AND is_penalized = ?", code, limit, false).
		UpdateColumn("borrowed_books_count", gorm.Expr("borrowed_books_count + 1"))
	return res.RowsAffected > 0, res.Error
}

// DecrementBorrowed atomically lowers the borrowed counter, never below zero
func (r *memberRepository) DecrementBorrowed(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("code = ? AND borrowed_books_count > 0", code).
		UpdateColumn("borrowed_books_count", gorm.Expr("borrowed_books_count - 1"))
	return res.RowsAffected > 0, res.Error
}

// SetPenalty suspends borrowing rights until the given date
func (r *memberRepository) SetPenalty(ctx context.Context, code string, until time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"is_penalized":     true,
			"penalty_end_date": until,
		}).Error
}

// ClearPenalty lifts a suspension
func (r *memberRepository) ClearPenalty(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"is_penalized":     false,
			"penalty_end_date": nil,
		}).Error
}

// ReleaseExpiredPenalties clears every penalty whose end date has passed
func (r *memberRepository) ReleaseExpiredPenalties(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("is_penalized = ? AND penalty_end_date IS NOT NULL AND penalty_end_date < ?", true, now).
		Updates(map[string]interface{}{
			"is_penalized":     false,
			"penalty_end_date": nil,
		})
	return res.RowsAffected, res.Error
}
