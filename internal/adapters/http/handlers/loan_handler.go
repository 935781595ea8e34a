package handlers

import (
	"errors"
	"strings"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/core/domain"
	"liblend/internal/core/services"
	"liblend/internal/pkg/pagination"
	"liblend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles borrow/return endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// LoanRequest represents borrow/return request body
type LoanRequest struct {
	MemberCode string `json:"member_code"`
	BookCode   string `json:"book_code"`
}

// Borrow lends a book to a member
// @Summary Borrow book
// @Description Lend one copy of a book to a member (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LoanRequest true "Member and book codes"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/borrow [post]
func (h *LoanHandler) Borrow(c *fiber.Ctx) error {
	var req LoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.MemberCode == "" {
		return response.BadRequest(c, "Member code is required")
	}
	if req.BookCode == "" {
		return response.BadRequest(c, "Book code is required")
	}

	loan, err := h.loanService.Borrow(c.Context(),
		strings.TrimSpace(req.MemberCode), strings.TrimSpace(req.BookCode))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrMemberPenalized):
			return response.Forbidden(c, "Member is penalized")
		case errors.Is(err, domain.ErrBorrowLimitReached):
			return response.Forbidden(c, "Borrow limit reached")
		case errors.Is(err, domain.ErrBookNotAvailable):
			return response.Conflict(c, "Book not available")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid request")
		default:
			return response.InternalServerError(c, "Failed to borrow book")
		}
	}

	return response.Created(c, "Book borrowed successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Return takes a book back from a member
// @Summary Return book
// @Description Take back one copy of a book from a member (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LoanRequest true "Member and book codes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	var req LoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.MemberCode == "" {
		return response.BadRequest(c, "Member code is required")
	}
	if req.BookCode == "" {
		return response.BadRequest(c, "Book code is required")
	}

	loan, err := h.loanService.Return(c.Context(),
		strings.TrimSpace(req.MemberCode), strings.TrimSpace(req.BookCode))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "No active loan for this member and book")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid request")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// List lists loans
// @Summary List loans
// @Description List loans with optional filters (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param member_code query string false "Filter by member code"
// @Param status query string false "Filter by status (BORROWED, RETURNED, RETURNED_LATE)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.LoanFilter{
		MemberCode: c.Query("member_code"),
		Status:     c.Query("status"),
	}

	items, total, err := h.loanService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	loans := make([]*models.LoanResponse, 0, len(items))
	for _, l := range items {
		loans = append(loans, l.ToResponse())
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(loans, params, total))
}

// GetByRefNo gets a loan by reference number
// @Summary Get loan by reference
// @Description Get a specific loan (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param refNo path string true "Loan reference number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{refNo} [get]
func (h *LoanHandler) GetByRefNo(c *fiber.Ctx) error {
	refNo := c.Params("refNo")

	loan, err := h.loanService.GetByRefNo(c.Context(), refNo)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}
