package services_test

import (
	"testing"

	"liblend/internal/adapters/persistence/memory"
	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"
	"liblend/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemberService(t *testing.T) (*services.MemberService, *memory.Store) {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	return services.NewMemberService(store.Members(), store.Loans()), store
}

func TestCreateMember(t *testing.T) {
	t.Run("registers a member with a clean slate", func(t *testing.T) {
		svc, _ := newMemberService(t)

		member, err := svc.Create(ctx, &services.CreateMemberInput{Code: "M-0001", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "M-0001", member.Code)
		assert.Equal(t, 0, member.BorrowedBooksCount)
		assert.False(t, member.IsPenalized)
		assert.Nil(t, member.PenaltyEndDate)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, _ := newMemberService(t)

		_, err := svc.Create(ctx, &services.CreateMemberInput{Code: "M-0001", Name: "Alice"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, &services.CreateMemberInput{Code: "M-0001", Name: "Imposter"})
		assert.ErrorIs(t, err, domain.ErrMemberAlreadyExists)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newMemberService(t)

		_, err := svc.Create(ctx, &services.CreateMemberInput{Code: "", Name: "No Code"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Create(ctx, &services.CreateMemberInput{Code: "M-0002", Name: ""})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestGetMember(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		svc, _ := newMemberService(t)

		_, err := svc.GetByCode(ctx, "M-9999")
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	})
}

func TestMemberLoans(t *testing.T) {
	t.Run("returns the loan history", func(t *testing.T) {
		svc, store := newMemberService(t)
		_, err := svc.Create(ctx, &services.CreateMemberInput{Code: "M-0001", Name: "Alice"})
		require.NoError(t, err)

		require.NoError(t, store.Loans().Create(ctx, &models.Loan{
			RefNo:      "ref-1",
			MemberCode: "M-0001",
			BookCode:   "B-0001",
			Status:     models.LoanStatusBorrowed,
		}))

		loans, err := svc.Loans(ctx, "M-0001")
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, "ref-1", loans[0].RefNo)
	})

	t.Run("unknown member", func(t *testing.T) {
		svc, _ := newMemberService(t)

		_, err := svc.Loans(ctx, "M-9999")
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	})
}

func TestListMembers(t *testing.T) {
	t.Run("paginates the registry", func(t *testing.T) {
		svc, _ := newMemberService(t)
		for _, code := range []string{"M-0001", "M-0002", "M-0003"} {
			_, err := svc.Create(ctx, &services.CreateMemberInput{Code: code, Name: code})
			require.NoError(t, err)
		}

		members, total, err := svc.List(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, members, 2)
	})
}
