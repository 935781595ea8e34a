package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"liblend/internal/adapters/persistence/memory"
	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	return store
}

func TestDecrementStockGuard(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Books().Create(ctx, &models.Book{Code: "B-1", Title: "One Copy", Stock: 1}))

	ok, err := store.Books().DecrementStock(ctx, "B-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second decrement hits the stock >= 1 guard
	ok, err = store.Books().DecrementStock(ctx, "B-1")
	require.NoError(t, err)
	assert.False(t, ok)

	book, err := store.Books().GetByCode(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.Stock)
}

func TestIncrementBorrowedGuard(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-1", Name: "Alice"}))

	for i := 0; i < 2; i++ {
		ok, err := store.Members().IncrementBorrowed(ctx, "M-1", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	// At the limit
	ok, err := store.Members().IncrementBorrowed(ctx, "M-1", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	member, err := store.Members().GetByCode(ctx, "M-1")
	require.NoError(t, err)
	assert.Equal(t, 2, member.BorrowedBooksCount)
}

func TestIncrementBorrowedPenalizedGuard(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-1", Name: "Alice"}))
	require.NoError(t, store.Members().SetPenalty(ctx, "M-1", time.Now().Add(time.Hour)))

	ok, err := store.Members().IncrementBorrowed(ctx, "M-1", 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecrementBorrowedGuard(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-1", Name: "Alice"}))

	// Counter at zero stays at zero
	ok, err := store.Members().DecrementBorrowed(ctx, "M-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseExpiredPenalties(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-1", Name: "Expired"}))
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-2", Name: "Active"}))
	require.NoError(t, store.Members().SetPenalty(ctx, "M-1", time.Now().Add(-time.Hour)))
	require.NoError(t, store.Members().SetPenalty(ctx, "M-2", time.Now().Add(time.Hour)))

	released, err := store.Members().ReleaseExpiredPenalties(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	m1, err := store.Members().GetByCode(ctx, "M-1")
	require.NoError(t, err)
	assert.False(t, m1.IsPenalized)

	m2, err := store.Members().GetByCode(ctx, "M-2")
	require.NoError(t, err)
	assert.True(t, m2.IsPenalized)
}

func TestAtomicallyRollsBackOnError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Books().Create(ctx, &models.Book{Code: "B-1", Title: "Rollback", Stock: 3}))

	boom := errors.New("boom")
	err := store.Atomically(ctx, func(tx repositories.Store) error {
		ok, err := tx.Books().DecrementStock(ctx, "B-1")
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The decrement inside the failed transaction must not stick
	book, err := store.Books().GetByCode(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, 3, book.Stock)
}

func TestAtomicallyCommits(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Books().Create(ctx, &models.Book{Code: "B-1", Title: "Commit", Stock: 3}))

	err := store.Atomically(ctx, func(tx repositories.Store) error {
		ok, err := tx.Books().DecrementStock(ctx, "B-1")
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBookNotAvailable
		}
		return nil
	})
	require.NoError(t, err)

	book, err := store.Books().GetByCode(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, 2, book.Stock)
}

func TestCloseLoanGuard(t *testing.T) {
	store := newStore(t)

	loan := &models.Loan{
		RefNo:      "ref-1",
		MemberCode: "M-1",
		BookCode:   "B-1",
		BorrowedAt: time.Now(),
		DueAt:      time.Now().Add(14 * 24 * time.Hour),
		Status:     models.LoanStatusBorrowed,
	}
	require.NoError(t, store.Loans().Create(ctx, loan))

	now := time.Now()
	loan.ReturnedAt = &now
	loan.Status = models.LoanStatusReturned

	ok, err := store.Loans().Close(ctx, loan)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second close of the same loan hits the returned_at IS NULL guard
	ok, err = store.Loans().Close(ctx, loan)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown loan reports zero rows, not an error
	ok, err = store.Loans().Close(ctx, &models.Loan{RefNo: "ref-missing", Status: models.LoanStatusReturned})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenLoanLookup(t *testing.T) {
	store := newStore(t)

	first := &models.Loan{
		RefNo:      "ref-old",
		MemberCode: "M-1",
		BookCode:   "B-1",
		BorrowedAt: time.Now().Add(-48 * time.Hour),
		Status:     models.LoanStatusBorrowed,
	}
	second := &models.Loan{
		RefNo:      "ref-new",
		MemberCode: "M-1",
		BookCode:   "B-1",
		BorrowedAt: time.Now(),
		Status:     models.LoanStatusBorrowed,
	}
	require.NoError(t, store.Loans().Create(ctx, first))
	require.NoError(t, store.Loans().Create(ctx, second))

	// Oldest open loan wins
	open, err := store.Loans().GetOpenLoan(ctx, "M-1", "B-1")
	require.NoError(t, err)
	assert.Equal(t, "ref-old", open.RefNo)

	now := time.Now()
	first.ReturnedAt = &now
	first.Status = models.LoanStatusReturned
	require.NoError(t, store.Loans().Update(ctx, first))

	open, err = store.Loans().GetOpenLoan(ctx, "M-1", "B-1")
	require.NoError(t, err)
	assert.Equal(t, "ref-new", open.RefNo)

	_, err = store.Loans().GetOpenLoan(ctx, "M-1", "B-9")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
