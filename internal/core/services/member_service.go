package services

import (
	"context"
	"log"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/adapters/persistence/repositories"
	"liblend/internal/core/domain"
)

// MemberService handles member registration and lookup
type MemberService struct {
	memberRepo repositories.MemberRepository
	loanRepo   repositories.LoanRepository
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repositories.MemberRepository, loanRepo repositories.LoanRepository) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
	}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Create registers a new member
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	if input.Code == "" || input.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.memberRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrMemberAlreadyExists
	}

	member := &models.Member{
		Code: input.Code,
		Name: input.Name,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member registered: %s (%s)", member.Code, member.Name)
	return member, nil
}

// GetByCode gets a member by member code
func (s *MemberService) GetByCode(ctx context.Context, code string) (*models.Member, error) {
	return s.memberRepo.GetByCode(ctx, code)
}

// Loans returns the loan history of a member, newest first
func (s *MemberService) Loans(ctx context.Context, code string) ([]*models.Loan, error) {
	if _, err := s.memberRepo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.loanRepo.ListByMember(ctx, code)
}

// List lists a page of the member registry and the total count
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit)
}
