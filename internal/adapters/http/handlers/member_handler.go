package handlers

import (
	"errors"
	"strings"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/core/domain"
	"liblend/internal/core/services"
	"liblend/internal/pkg/pagination"
	"liblend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// CreateMemberRequest represents create member request
type CreateMemberRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Create registers a new member
// @Summary Register member
// @Description Register a new library member (staff only)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Code == "" {
		return response.BadRequest(c, "Member code is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	input := &services.CreateMemberInput{
		Code: strings.TrimSpace(req.Code),
		Name: strings.TrimSpace(req.Name),
	}

	member, err := h.memberService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberAlreadyExists):
			return response.Conflict(c, "Member code already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid member data")
		default:
			return response.InternalServerError(c, "Failed to register member")
		}
	}

	return response.Created(c, "Member registered successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// List lists members
// @Summary List members
// @Description List registered members
// @Tags Members
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	items, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	members := make([]*models.MemberResponse, 0, len(items))
	for _, m := range items {
		members = append(members, m.ToResponse())
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// GetByCode gets a member by member code
// @Summary Get member by code
// @Description Get a specific member
// @Tags Members
// @Accept json
// @Produce json
// @Param code path string true "Member code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{code} [get]
func (h *MemberHandler) GetByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	member, err := h.memberService.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Loans lists the loan history of a member
// @Summary Member loan history
// @Description List all loans of a member, newest first
// @Tags Members
// @Accept json
// @Produce json
// @Param code path string true "Member code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{code}/loans [get]
func (h *MemberHandler) Loans(c *fiber.Ctx) error {
	code := c.Params("code")

	loans, err := h.memberService.Loans(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	result := make([]*models.LoanResponse, 0, len(loans))
	for _, l := range loans {
		result = append(result, l.ToResponse())
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": result,
	})
}
