// Package memory provides a go-memdb backed Store. It mirrors the SQL
// repositories closely enough that the lending services run against it
// unchanged, which is how the service tests exercise the coordinator.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/core/domain"

	"github.com/hashicorp/go-memdb"
)

const (
	tableBooks   = "books"
	tableMembers = "members"
	tableLoans   = "loans"
)

// Store implements repositories.Store on go-memdb
type Store struct {
	db  *memdb.MemDB
	mu  *sync.Mutex // serializes write transactions
	txn *memdb.Txn  // non-nil while inside Atomically
	seq *uint64
}

// NewStore creates an empty in-memory store
func NewStore() (*Store, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableBooks: {
				Name: tableBooks,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
				},
			},
			tableMembers: {
				Name: tableMembers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
				},
			},
			tableLoans: {
				Name: tableLoans,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "RefNo"},
					},
					"member": {
						Name:    "member",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "MemberCode"},
					},
					"book": {
						Name:    "book",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "BookCode"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}

	var seq uint64
	return &Store{db: db, mu: &sync.Mutex{}, seq: &seq}, nil
}

// Books returns the book repository
func (s *Store) Books() repositories.BookRepository {
	return &bookRepo{s: s}
}

// Members returns the member repository
func (s *Store) Members() repositories.MemberRepository {
	return &memberRepo{s: s}
}

// Loans returns the loan repository
func (s *Store) Loans() repositories.LoanRepository {
	return &loanRepo{s: s}
}

// Atomically runs fn against a store bound to one write transaction.
// The mutex serializes writers, so concurrent borrow attempts are applied
// one after the other; an error from fn aborts every write made inside it.
func (s *Store) Atomically(_ context.Context, fn func(repositories.Store) error) error {
	if s.txn != nil {
		// Already inside a transaction, just reuse it
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	bound := &Store{db: s.db, mu: s.mu, txn: txn, seq: s.seq}
	if err := fn(bound); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) nextID() uint {
	return uint(atomic.AddUint64(s.seq, 1))
}

// write runs fn in a write transaction, reusing the bound one when present
func (s *Store) write(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	if err := fn(txn); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

// read runs fn against a read snapshot, or the bound transaction when present
func (s *Store) read(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

// ============================================================
// Books
// ============================================================

type bookRepo struct {
	s *Store
}

func copyBook(b *models.Book) *models.Book {
	c := *b
	return &c
}

func (r *bookRepo) Create(_ context.Context, book *models.Book) error {
	return r.s.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableBooks, "id", book.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrBookAlreadyExists
		}
		book.ID = r.s.nextID()
		book.CreatedAt = time.Now()
		book.UpdatedAt = book.CreatedAt
		return txn.Insert(tableBooks, copyBook(book))
	})
}

func (r *bookRepo) GetByCode(_ context.Context, code string) (*models.Book, error) {
	var book *models.Book
	err := r.s.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableBooks, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrBookNotFound
		}
		book = copyBook(raw.(*models.Book))
		return nil
	})
	return book, err
}

func (r *bookRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	var exists bool
	err := r.s.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableBooks, "id", code)
		exists = raw != nil
		return err
	})
	return exists, err
}

func (r *bookRepo) List(_ context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableBooks, "id")
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			books = append(books, copyBook(raw.(*models.Book)))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(books, func(i, j int) bool { return books[i].Code < books[j].Code })
	total := int64(len(books))
	return paginate(books, offset, limit), total, nil
}

func (r *bookRepo) Update(_ context.Context, book *models.Book) error {
	return r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableBooks, "id", book.Code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrBookNotFound
		}
		book.UpdatedAt = time.Now()
		return txn.Insert(tableBooks, copyBook(book))
	})
}

func (r *bookRepo) DecrementStock(_ context.Context, code string) (bool, error) {
	var ok bool
	err := r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableBooks, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		book := copyBook(raw.(*models.Book))
		if book.Stock < 1 {
			return nil
		}
		book.Stock--
		book.UpdatedAt = time.Now()
		if err := txn.Insert(tableBooks, book); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

func (r *bookRepo) IncrementStock(_ context.Context, code string) (bool, error) {
	var ok bool
	err := r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableBooks, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		book := copyBook(raw.(*models.Book))
		book.Stock++
		book.UpdatedAt = time.Now()
		if err := txn.Insert(tableBooks, book); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

// ============================================================
// Members
// ============================================================

type memberRepo struct {
	s *Store
}

func copyMember(m *models.Member) *models.Member {
	c := *m
	if m.PenaltyEndDate != nil {
		end := *m.PenaltyEndDate
		c.PenaltyEndDate = &end
	}
	return &c
}

func (r *memberRepo) Create(_ context.Context, member *models.Member) error {
	return r.s.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableMembers, "id", member.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrMemberAlreadyExists
		}
		member.ID = r.s.nextID()
		member.CreatedAt = time.Now()
		member.UpdatedAt = member.CreatedAt
		return txn.Insert(tableMembers, copyMember(member))
	})
}

func (r *memberRepo) GetByCode(_ context.Context, code string) (*models.Member, error) {
	var member *models.Member
	err := r.s.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrMemberNotFound
		}
		member = copyMember(raw.(*models.Member))
		return nil
	})
	return member, err
}

func (r *memberRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	var exists bool
	err := r.s.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		exists = raw != nil
		return err
	})
	return exists, err
}

func (r *memberRepo) List(_ context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableMembers, "id")
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			members = append(members, copyMember(raw.(*models.Member)))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(members, func(i, j int) bool { return members[i].Code < members[j].Code })
	total := int64(len(members))
	return paginate(members, offset, limit), total, nil
}

func (r *memberRepo) Update(_ context.Context, member *models.Member) error {
	return r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", member.Code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrMemberNotFound
		}
		member.UpdatedAt = time.Now()
		return txn.Insert(tableMembers, copyMember(member))
	})
}

func (r *memberRepo) IncrementBorrowed(_ context.Context, code string, limit int) (bool, error) {
	var ok bool
	err := r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		member := copyMember(raw.(*models.Member))
		if member.IsPenalized || member.BorrowedBooksCount >= limit {
			return nil
		}
		member.BorrowedBooksCount++
		member.UpdatedAt = time.Now()
		if err := txn.Insert(tableMembers, member); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

func (r *memberRepo) DecrementBorrowed(_ context.Context, code string) (bool, error) {
	var ok bool
	err := r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		member := copyMember(raw.(*models.Member))
		if member.BorrowedBooksCount < 1 {
			return nil
		}
		member.BorrowedBooksCount--
		member.UpdatedAt = time.Now()
		if err := txn.Insert(tableMembers, member); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

func (r *memberRepo) SetPenalty(_ context.Context, code string, until time.Time) error {
	return r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrMemberNotFound
		}
		member := copyMember(raw.(*models.Member))
		member.IsPenalized = true
		member.PenaltyEndDate = &until
		member.UpdatedAt = time.Now()
		return txn.Insert(tableMembers, member)
	})
}

func (r *memberRepo) ClearPenalty(_ context.Context, code string) error {
	return r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableMembers, "id", code)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrMemberNotFound
		}
		member := copyMember(raw.(*models.Member))
		member.IsPenalized = false
		member.PenaltyEndDate = nil
		member.UpdatedAt = time.Now()
		return txn.Insert(tableMembers, member)
	})
}

func (r *memberRepo) ReleaseExpiredPenalties(_ context.Context, now time.Time) (int64, error) {
	var released int64
	err := r.s.write(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableMembers, "id")
		if err != nil {
			return err
		}
		var expired []*models.Member
		for raw := it.Next(); raw != nil; raw = it.Next() {
			m := raw.(*models.Member)
			if m.IsPenalized && m.PenaltyEndDate != nil && now.After(*m.PenaltyEndDate) {
				expired = append(expired, copyMember(m))
			}
		}
		for _, m := range expired {
			m.IsPenalized = false
			m.PenaltyEndDate = nil
			m.UpdatedAt = time.Now()
			if err := txn.Insert(tableMembers, m); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	return released, err
}

// ============================================================
// Loans
// ============================================================

type loanRepo struct {
	s *Store
}

func copyLoan(l *models.Loan) *models.Loan {
	c := *l
	if l.ReturnedAt != nil {
		ret := *l.ReturnedAt
		c.ReturnedAt = &ret
	}
	c.Member = nil
	c.Book = nil
	return &c
}

func (r *loanRepo) Create(_ context.Context, loan *models.Loan) error {
	return r.s.write(func(txn *memdb.Txn) error {
		loan.ID = r.s.nextID()
		loan.CreatedAt = time.Now()
		loan.UpdatedAt = loan.CreatedAt
		return txn.Insert(tableLoans, copyLoan(loan))
	})
}

func (r *loanRepo) GetByRefNo(_ context.Context, refNo string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.s.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLoans, "id", refNo)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrLoanNotFound
		}
		loan = copyLoan(raw.(*models.Loan))
		return nil
	})
	return loan, err
}

func (r *loanRepo) GetOpenLoan(_ context.Context, memberCode, bookCode string) (*models.Loan, error) {
	var open *models.Loan
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLoans, "member", memberCode)
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			l := raw.(*models.Loan)
			if l.BookCode != bookCode || !l.IsOpen() {
				continue
			}
			if open == nil || l.BorrowedAt.Before(open.BorrowedAt) {
				open = copyLoan(l)
			}
		}
		if open == nil {
			return domain.ErrLoanNotFound
		}
		return nil
	})
	return open, err
}

func (r *loanRepo) ListByMember(_ context.Context, memberCode string) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLoans, "member", memberCode)
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			loans = append(loans, copyLoan(raw.(*models.Loan)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(loans, func(i, j int) bool { return loans[i].BorrowedAt.After(loans[j].BorrowedAt) })
	return loans, nil
}

func (r *loanRepo) List(_ context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLoans, "id")
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			l := raw.(*models.Loan)
			if filter.MemberCode != "" && l.MemberCode != filter.MemberCode {
				continue
			}
			if filter.BookCode != "" && l.BookCode != filter.BookCode {
				continue
			}
			if filter.Status != "" && l.Status != filter.Status {
				continue
			}
			loans = append(loans, copyLoan(l))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(loans, func(i, j int) bool { return loans[i].BorrowedAt.After(loans[j].BorrowedAt) })
	total := int64(len(loans))
	return paginate(loans, offset, limit), total, nil
}

func (r *loanRepo) Update(_ context.Context, loan *models.Loan) error {
	return r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLoans, "id", loan.RefNo)
		if err != nil {
			return err
		}
		if raw == nil {
			return domain.ErrLoanNotFound
		}
		loan.UpdatedAt = time.Now()
		return txn.Insert(tableLoans, copyLoan(loan))
	})
}

func (r *loanRepo) Close(_ context.Context, loan *models.Loan) (bool, error) {
	var ok bool
	err := r.s.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLoans, "id", loan.RefNo)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		// Already closed by another transaction
		if !raw.(*models.Loan).IsOpen() {
			return nil
		}
		closed := copyLoan(loan)
		closed.UpdatedAt = time.Now()
		if err := txn.Insert(tableLoans, closed); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

func (r *loanRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.s.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLoans, "id")
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			l := raw.(*models.Loan)
			if l.Overdue(now) {
				count++
			}
		}
		return nil
	})
	return count, err
}

// paginate slices a sorted result set the way SQL OFFSET/LIMIT would
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
