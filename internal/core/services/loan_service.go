package services

import (
	"context"
	"log"
	"time"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/config"
	"liblend/internal/core/domain"

	"github.com/google/uuid"
)

// LoanService coordinates the borrow and return transitions across the
// member and book records. Every transition runs inside one Store
// transaction; the counter updates carry their own guards, so two racing
// borrows against the last copy end with one success and one rejection,
// never a negative stock or a counter past the limit.
type LoanService struct {
	store       repositories.Store
	loanPeriod  time.Duration
	penaltyTime time.Duration
}

// NewLoanService creates a new loan service
func NewLoanService(store repositories.Store, cfg *config.Config) *LoanService {
	return &LoanService{
		store:       store,
		loanPeriod:  time.Duration(cfg.Loan.PeriodDays) * 24 * time.Hour,
		penaltyTime: time.Duration(cfg.Loan.PenaltyDays) * 24 * time.Hour,
	}
}

// Borrow lends one copy of a book to a member.
//
// Preconditions, checked in order:
//  1. member exists                      -> domain.ErrMemberNotFound
//  2. member is not penalized            -> domain.ErrMemberPenalized
//  3. member holds fewer than the limit  -> domain.ErrBorrowLimitReached
//  4. book exists                        -> domain.ErrBookNotFound
//  5. at least one copy in stock         -> domain.ErrBookNotAvailable
//
// On success the member counter, the book stock and the new loan row are
// committed together.
func (s *LoanService) Borrow(ctx context.Context, memberCode, bookCode string) (*models.Loan, error) {
	if memberCode == "" || bookCode == "" {
		return nil, domain.ErrInvalidInput
	}

	var loan *models.Loan
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		now := time.Now()

		member, err := tx.Members().GetByCode(ctx, memberCode)
		if err != nil {
			return err
		}

		if member.IsPenalized {
			if !member.PenaltyExpired(now) {
				return domain.ErrMemberPenalized
			}
			// Penalty has run out, release it and continue
			if err := tx.Members().ClearPenalty(ctx, memberCode); err != nil {
				return err
			}
		}

		if member.BorrowedBooksCount >= domain.MaxBorrowedBooks {
			return domain.ErrBorrowLimitReached
		}

		book, err := tx.Books().GetByCode(ctx, bookCode)
		if err != nil {
			return err
		}
		if !book.Available() {
			return domain.ErrBookNotAvailable
		}

		// Guarded effects: the WHERE clauses re-check stock and limit at
		// commit time, closing the gap between the reads above and the
		// writes below under concurrent requests.
		ok, err := tx.Books().DecrementStock(ctx, bookCode)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBookNotAvailable
		}

		ok, err = tx.Members().IncrementBorrowed(ctx, memberCode, domain.MaxBorrowedBooks)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBorrowLimitReached
		}

		loan = &models.Loan{
			RefNo:      uuid.New().String(),
			MemberCode: memberCode,
			BookCode:   bookCode,
			BorrowedAt: now,
			DueAt:      now.Add(s.loanPeriod),
			Status:     models.LoanStatusBorrowed,
		}
		return tx.Loans().Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📚 Book borrowed: member=%s book=%s ref=%s due=%s",
		memberCode, bookCode, loan.RefNo, loan.DueAt.Format("2006-01-02"))

	return loan, nil
}

// Return takes back one copy of a book from a member.
//
// The open loan for the member/book pair identifies what is being returned;
// without one the request fails with domain.ErrLoanNotFound. A return after
// the due date marks the loan RETURNED_LATE and penalizes the member until
// now + penalty window.
func (s *LoanService) Return(ctx context.Context, memberCode, bookCode string) (*models.Loan, error) {
	if memberCode == "" || bookCode == "" {
		return nil, domain.ErrInvalidInput
	}

	var loan *models.Loan
	var penalized bool
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		now := time.Now()

		if _, err := tx.Members().GetByCode(ctx, memberCode); err != nil {
			return err
		}
		if _, err := tx.Books().GetByCode(ctx, bookCode); err != nil {
			return err
		}

		var err error
		loan, err = tx.Loans().GetOpenLoan(ctx, memberCode, bookCode)
		if err != nil {
			return err
		}

		ok, err := tx.Members().DecrementBorrowed(ctx, memberCode)
		if err != nil {
			return err
		}
		if !ok {
			// Counter and loan table disagree, refuse rather than corrupt
			return domain.ErrLoanNotFound
		}

		if _, err := tx.Books().IncrementStock(ctx, bookCode); err != nil {
			return err
		}

		late := loan.Overdue(now)

		loan.ReturnedAt = &now
		loan.Status = models.LoanStatusReturned
		if late {
			loan.Status = models.LoanStatusReturnedLate
			penalized = true
			if err := tx.Members().SetPenalty(ctx, memberCode, now.Add(s.penaltyTime)); err != nil {
				return err
			}
		}

		// Guarded close: only one transaction may mark this loan returned.
		// A concurrent return that already closed it aborts here, rolling
		// back the counter and stock updates above.
		ok, err = tx.Loans().Close(ctx, loan)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrLoanNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if penalized {
		log.Printf("⚠️ Late return: member=%s book=%s ref=%s, penalty until %s",
			memberCode, bookCode, loan.RefNo, loan.ReturnedAt.Add(s.penaltyTime).Format("2006-01-02"))
	} else {
		log.Printf("📗 Book returned: member=%s book=%s ref=%s", memberCode, bookCode, loan.RefNo)
	}

	return loan, nil
}

// GetByRefNo gets a loan by its reference number
func (s *LoanService) GetByRefNo(ctx context.Context, refNo string) (*models.Loan, error) {
	return s.store.Loans().GetByRefNo(ctx, refNo)
}

// List lists a page of loans matching the filter and the total count
func (s *LoanService) List(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	return s.store.Loans().List(ctx, filter, offset, limit)
}
