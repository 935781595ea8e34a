package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormStore implements Store on GORM
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given GORM connection
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Books returns the book repository
func (s *gormStore) Books() BookRepository {
	return NewBookRepository(s.db)
}

// Members returns the member repository
func (s *gormStore) Members() MemberRepository {
	return NewMemberRepository(s.db)
}

// Loans returns the loan repository
func (s *gormStore) Loans() LoanRepository {
	return NewLoanRepository(s.db)
}

// Atomically runs fn against a store bound to one database transaction.
// Any error returned by fn rolls back every write made inside it.
func (s *gormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
