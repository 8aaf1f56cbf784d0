package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/utils"
)

// DoneeService manages donee accounts: the activate/deactivate switch and the
// listing behind the admin review modal.
type DoneeService struct {
	userRepo *repository.UserRepository
}

func NewDoneeService(userRepo *repository.UserRepository) *DoneeService {
	return &DoneeService{userRepo: userRepo}
}

// SwitchStatus flips a donee between ativo and inativo and returns the new
// status. Applying it twice restores the original state.
func (s *DoneeService) SwitchStatus(userID string) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("donee %s not found", userID)
		}
		return "", apperrors.Internal("failed to load donee", err)
	}

	if user.DoneeStatus == models.DoneeStatusActive {
		user.DoneeStatus = models.DoneeStatusInactive
	} else {
		user.DoneeStatus = models.DoneeStatusActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return "", apperrors.Internal("failed to update donee status", err)
	}
	return user.DoneeStatus, nil
}

// DoneeListResponse is the paginated donee listing envelope.
type DoneeListResponse struct {
	Donees     []models.UserResponse    `json:"donees"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ListDonees returns donee accounts with optional name/email search.
func (s *DoneeService) ListDonees(page, pageSize int, search string) (*DoneeListResponse, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	users, total, err := s.userRepo.GetDonees(page, pageSize, search)
	if err != nil {
		return nil, apperrors.Internal("failed to list donees", err)
	}

	donees := make([]models.UserResponse, len(users))
	for i := range users {
		donees[i] = users[i].ToResponse()
	}

	return &DoneeListResponse{
		Donees:     donees,
		Pagination: utils.CalculatePaginationInfo(total, page, pageSize),
	}, nil
}
