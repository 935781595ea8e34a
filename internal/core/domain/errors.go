package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Catalogue errors
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrBookAlreadyExists   = errors.New("book code already exists")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("member code already exists")
)

// Lending errors
// Each borrow/return precondition has its own kind so the HTTP layer
// can map it to 403/404/409 instead of a generic failure.
var (
	ErrMemberPenalized    = errors.New("member is penalized")
	ErrBorrowLimitReached = errors.New("borrow limit reached")
	ErrBookNotAvailable   = errors.New("book not available")
	ErrLoanNotFound       = errors.New("no active loan for member and book")
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)
