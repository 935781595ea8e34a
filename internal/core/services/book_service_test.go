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

func newBookService(t *testing.T) (*services.BookService, *memory.Store) {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	return services.NewBookService(store.Books()), store
}

func TestCreateBook(t *testing.T) {
	t.Run("adds a book to the catalogue", func(t *testing.T) {
		svc, _ := newBookService(t)

		book, err := svc.Create(ctx, &services.CreateBookInput{
			Code:   "B-0001",
			Title:  "The Go Programming Language",
			Author: "Donovan & Kernighan",
			Stock:  3,
		})
		require.NoError(t, err)
		assert.Equal(t, "B-0001", book.Code)
		assert.Equal(t, 3, book.Stock)

		got, err := svc.GetByCode(ctx, "B-0001")
		require.NoError(t, err)
		assert.Equal(t, book.Title, got.Title)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, _ := newBookService(t)

		_, err := svc.Create(ctx, &services.CreateBookInput{Code: "B-0001", Title: "First", Stock: 1})
		require.NoError(t, err)

		_, err = svc.Create(ctx, &services.CreateBookInput{Code: "B-0001", Title: "Second", Stock: 1})
		assert.ErrorIs(t, err, domain.ErrBookAlreadyExists)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newBookService(t)

		_, err := svc.Create(ctx, &services.CreateBookInput{Code: "", Title: "No Code", Stock: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Create(ctx, &services.CreateBookInput{Code: "B-0002", Title: "", Stock: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Create(ctx, &services.CreateBookInput{Code: "B-0003", Title: "Negative", Stock: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestGetBook(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		svc, _ := newBookService(t)

		_, err := svc.GetByCode(ctx, "B-9999")
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestListBooks(t *testing.T) {
	t.Run("paginates the catalogue", func(t *testing.T) {
		svc, store := newBookService(t)
		for _, code := range []string{"B-0001", "B-0002", "B-0003"} {
			require.NoError(t, store.Books().Create(ctx, &models.Book{Code: code, Title: code, Stock: 1}))
		}

		books, total, err := svc.List(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, books, 2)

		books, _, err = svc.List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}
