package domain

// Role represents user role in the system
type Role string

const (
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// MaxBorrowedBooks is the number of books a member may hold at the same time
const MaxBorrowedBooks = 2

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
