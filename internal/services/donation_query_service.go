package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/utils"
)

// Static allow-lists of filterable fields per listing, mapped to the SQL
// column the filter applies to. An unknown filterBy is rejected before any
// query runs.
var (
	allDonationsFilters = map[string]string{
		"item_name":   "donations.item_name",
		"measure":     "donations.measure",
		"status":      "donations.status",
		"campaign_id": "donations.campaign_id",
		"user_id":     "donations.user_id",
	}
	campaignDonationsFilters = map[string]string{
		"item_name":  "donations.item_name",
		"measure":    "donations.measure",
		"status":     "donations.status",
		"user_name":  "users.name",
		"user_email": "users.email",
	}
	userDonationsFilters = map[string]string{
		"item_name":     "donations.item_name",
		"measure":       "donations.measure",
		"status":        "donations.status",
		"campaign_name": "campaigns.name",
	}
)

// DonationListParams are the common listing query parameters.
type DonationListParams struct {
	Page        int
	Limit       int
	FilterBy    string
	FilterValue string
}

// DonationQueryService serves the paginated, filterable donation listings.
// Rows come from the donations table only; user and campaign display fields
// are read-time joins.
type DonationQueryService struct {
	donationRepo *repository.DonationRepository
	campaignRepo *repository.CampaignRepository
	userRepo     *repository.UserRepository
}

func NewDonationQueryService(db *gorm.DB) *DonationQueryService {
	return &DonationQueryService{
		donationRepo: repository.NewDonationRepository(db),
		campaignRepo: repository.NewCampaignRepository(db),
		userRepo:     repository.NewUserRepository(db),
	}
}

// resolveFilter validates filterBy against the listing's allow-list and
// returns the column to filter on, or "" when no filter was requested.
func resolveFilter(allowed map[string]string, params *DonationListParams) (string, error) {
	if params.FilterBy == "" || params.FilterValue == "" {
		return "", nil
	}
	column, ok := allowed[params.FilterBy]
	if !ok {
		return "", apperrors.Validation("cannot filter donations by %q", params.FilterBy)
	}
	return column, nil
}

// ListAll returns a page over every donation in the system.
func (s *DonationQueryService) ListAll(params DonationListParams) (*models.DonationListResponse, error) {
	page, limit := utils.ValidateAndNormalizePagination(params.Page, params.Limit)

	column, err := resolveFilter(allDonationsFilters, &params)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.donationRepo.ListAll(column, params.FilterValue, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list donations", err)
	}

	return &models.DonationListResponse{
		Page:           page,
		Limit:          limit,
		TotalResponses: total,
		Donations:      rows,
	}, nil
}

// ListByCampaign returns a page of one campaign's donations, each joined with
// the donor's name and email. Donations whose donor account no longer exists
// are skipped and logged, not fatal.
func (s *DonationQueryService) ListByCampaign(campaignID string, params DonationListParams) (*models.DonationListResponse, error) {
	page, limit := utils.ValidateAndNormalizePagination(params.Page, params.Limit)

	exists, err := s.campaignRepo.Exists(campaignID)
	if err != nil {
		return nil, apperrors.Internal("failed to check campaign", err)
	}
	if !exists {
		return nil, apperrors.NotFound("campaign %s not found", campaignID)
	}

	column, err := resolveFilter(campaignDonationsFilters, &params)
	if err != nil {
		return nil, err
	}

	if orphaned, err := s.donationRepo.CountOrphanedByCampaign(campaignID); err == nil && orphaned > 0 {
		logrus.Warnf("campaign %s has %d donations with missing user records, skipping them", campaignID, orphaned)
	}

	rows, total, err := s.donationRepo.ListByCampaign(campaignID, column, params.FilterValue, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list campaign donations", err)
	}

	return &models.DonationListResponse{
		Page:           page,
		Limit:          limit,
		TotalResponses: total,
		Donations:      rows,
	}, nil
}

// ListByUser returns a page of one user's donations, each joined with the
// campaign display name.
func (s *DonationQueryService) ListByUser(userID string, params DonationListParams) (*models.DonationListResponse, error) {
	page, limit := utils.ValidateAndNormalizePagination(params.Page, params.Limit)

	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %s not found", userID)
		}
		return nil, apperrors.Internal("failed to check user", err)
	}

	column, err := resolveFilter(userDonationsFilters, &params)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.donationRepo.ListByUser(userID, column, params.FilterValue, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list user donations", err)
	}

	return &models.DonationListResponse{
		Page:           page,
		Limit:          limit,
		TotalResponses: total,
		Donations:      rows,
	}, nil
}
