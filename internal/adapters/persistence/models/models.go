package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Catalogue Tables
// ============================================================

// Book represents books table
type Book struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:30;not null" json:"code"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Author    string         `gorm:"size:120" json:"author"`
	Stock     int            `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// Available reports whether at least one copy is on the shelf
func (b *Book) Available() bool {
	return b.Stock >= 1
}

// BookResponse DTO
type BookResponse struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:        b.ID,
		Code:      b.Code,
		Title:     b.Title,
		Author:    b.Author,
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
	}
}

// Member represents members table
type Member struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Code               string         `gorm:"uniqueIndex;size:30;not null" json:"code"`
	Name               string         `gorm:"size:120;not null" json:"name"`
	BorrowedBooksCount int            `gorm:"not null;default:0" json:"borrowed_books_count"`
	IsPenalized        bool           `gorm:"not null;default:false" json:"is_penalized"`
	PenaltyEndDate     *time.Time     `json:"penalty_end_date"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// PenaltyExpired reports whether an active penalty has run out at the given time
func (m *Member) PenaltyExpired(now time.Time) bool {
	return m.IsPenalized && m.PenaltyEndDate != nil && now.After(*m.PenaltyEndDate)
}

// MemberResponse DTO
type MemberResponse struct {
	ID                 uint       `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	BorrowedBooksCount int        `json:"borrowed_books_count"`
	IsPenalized        bool       `json:"is_penalized"`
	PenaltyEndDate     *time.Time `json:"penalty_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:                 m.ID,
		Code:               m.Code,
		Name:               m.Name,
		BorrowedBooksCount: m.BorrowedBooksCount,
		IsPenalized:        m.IsPenalized,
		PenaltyEndDate:     m.PenaltyEndDate,
		CreatedAt:          m.CreatedAt,
	}
}

// ============================================================
// Lending Tables
// ============================================================

// Loan status values
const (
	LoanStatusBorrowed     = "BORROWED"
	LoanStatusReturned     = "RETURNED"
	LoanStatusReturnedLate = "RETURNED_LATE"
)

// Loan represents loans table.
// One row per borrowed copy; ReturnedAt is nil while the copy is out.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RefNo      string     `gorm:"uniqueIndex;size:40;not null" json:"ref_no"`
	MemberCode string     `gorm:"size:30;not null;index" json:"member_code"`
	BookCode   string     `gorm:"size:30;not null;index" json:"book_code"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"not null;index" json:"due_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at"`
	Status     string     `gorm:"size:20;not null;default:'BORROWED'" json:"status"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberCode;references:Code" json:"member,omitempty"`
	Book   *Book   `gorm:"foreignKey:BookCode;references:Code" json:"book,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// Overdue reports whether an open loan is past its due date
func (l *Loan) Overdue(now time.Time) bool {
	return l.IsOpen() && now.After(l.DueAt)
}

// LoanResponse DTO
type LoanResponse struct {
	ID         uint       `json:"id"`
	RefNo      string     `json:"ref_no"`
	MemberCode string     `json:"member_code"`
	MemberName string     `json:"member_name,omitempty"`
	BookCode   string     `json:"book_code"`
	BookTitle  string     `json:"book_title,omitempty"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     string     `json:"status"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		RefNo:      l.RefNo,
		MemberCode: l.MemberCode,
		BookCode:   l.BookCode,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		Status:     l.Status,
	}

	if l.Member != nil {
		resp.MemberName = l.Member.Name
	}
	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}

	return resp
}

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table (staff accounts)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'LIBRARIAN'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&Member{},
		&Loan{},
	)
}
