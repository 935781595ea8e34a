package repositories

import (
	"context"
	"time"

	"liblend/internal/adapters/persistence/models"
)

// BookRepository defines book repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByCode(ctx context.Context, code string) (*models.Book, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	Update(ctx context.Context, book *models.Book) error

	// DecrementStock takes one copy off the shelf. The update carries a
	// stock >= 1 guard; false means no copy was available at commit time.
	DecrementStock(ctx context.Context, code string) (bool, error)
	// IncrementStock puts one copy back on the shelf.
	IncrementStock(ctx context.Context, code string) (bool, error)
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByCode(ctx context.Context, code string) (*models.Member, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error

	// IncrementBorrowed bumps the borrowed counter. The update is guarded by
	// count < limit AND not penalized; false means the member was no longer
	// eligible at commit time.
	IncrementBorrowed(ctx context.Context, code string, limit int) (bool, error)
	// DecrementBorrowed lowers the borrowed counter, guarded by count > 0.
	DecrementBorrowed(ctx context.Context, code string) (bool, error)
	// SetPenalty suspends borrowing rights until the given date.
	SetPenalty(ctx context.Context, code string, until time.Time) error
	// ClearPenalty lifts a suspension.
	ClearPenalty(ctx context.Context, code string) error
	// ReleaseExpiredPenalties clears every penalty whose end date has passed
	// and returns how many members were released.
	ReleaseExpiredPenalties(ctx context.Context, now time.Time) (int64, error)
}

// LoanFilter narrows loan listings
type LoanFilter struct {
	MemberCode string
	BookCode   string
	Status     string
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByRefNo(ctx context.Context, refNo string) (*models.Loan, error)
	// GetOpenLoan finds the loan a return has to close: the oldest
	// not-yet-returned loan for the member/book pair.
	GetOpenLoan(ctx context.Context, memberCode, bookCode string) (*models.Loan, error)
	ListByMember(ctx context.Context, memberCode string) ([]*models.Loan, error)
	List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error)
	Update(ctx context.Context, loan *models.Loan) error
	// Close marks the loan returned with the given ReturnedAt and Status.
	// The update is guarded by returned_at IS NULL; false means another
	// transaction already closed it.
	Close(ctx context.Context, loan *models.Loan) (bool, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Store bundles the lending repositories and provides the transaction
// boundary for the borrow/return coordinator. Atomically runs fn against a
// store bound to a single transaction; an error aborts every write made
// inside fn.
type Store interface {
	Books() BookRepository
	Members() MemberRepository
	Loans() LoanRepository
	Atomically(ctx context.Context, fn func(Store) error) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
