package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
)

// CampaignService manages campaigns and their item catalogs.
type CampaignService struct {
	campaignRepo *repository.CampaignRepository
}

func NewCampaignService(campaignRepo *repository.CampaignRepository) *CampaignService {
	return &CampaignService{campaignRepo: campaignRepo}
}

// CreateCampaign creates a campaign with its item catalog. Item (name,
// measure) pairs must be unique within the campaign.
func (s *CampaignService) CreateCampaign(req *models.CreateCampaignRequest) (*models.CampaignResponse, error) {
	seen := make(map[[2]string]bool, len(req.Items))
	items := make([]models.CampaignItem, len(req.Items))
	for i, item := range req.Items {
		key := [2]string{item.Name, item.Measure}
		if seen[key] {
			return nil, apperrors.Validation("duplicate item (%s, %s) in campaign", item.Name, item.Measure)
		}
		seen[key] = true
		items[i] = models.CampaignItem{
			Name:    item.Name,
			Measure: item.Measure,
			Goal:    item.Goal,
			Status:  models.ItemStatusAvailable,
		}
	}

	campaign := &models.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.CampaignStatusActive,
		Items:       items,
	}

	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, apperrors.Internal("failed to create campaign", err)
	}

	return s.toResponse(campaign), nil
}

// GetCampaignByID retrieves a campaign with its items and donations view.
func (s *CampaignService) GetCampaignByID(campaignID string) (*models.CampaignResponse, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("campaign %s not found", campaignID)
		}
		return nil, apperrors.Internal("failed to get campaign", err)
	}

	return s.toResponse(campaign), nil
}

// GetAllCampaigns retrieves all campaigns with their item catalogs.
func (s *CampaignService) GetAllCampaigns() ([]*models.CampaignResponse, error) {
	campaigns, err := s.campaignRepo.GetAll()
	if err != nil {
		return nil, apperrors.Internal("failed to get campaigns", err)
	}

	responses := make([]*models.CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		responses[i] = s.toResponse(campaign)
	}

	return responses, nil
}

// toResponse converts a Campaign model to its response DTO
func (s *CampaignService) toResponse(campaign *models.Campaign) *models.CampaignResponse {
	items := make([]models.CampaignItemResponse, len(campaign.Items))
	for i, item := range campaign.Items {
		items[i] = models.CampaignItemResponse{
			ID:            item.ID,
			Name:          item.Name,
			Measure:       item.Measure,
			Goal:          item.Goal,
			AmountDonated: item.AmountDonated,
			Status:        item.Status,
		}
	}

	var donations []models.DonationResponse
	if len(campaign.Donations) > 0 {
		donations = make([]models.DonationResponse, len(campaign.Donations))
		for i := range campaign.Donations {
			donations[i] = campaign.Donations[i].ToResponse()
		}
	}

	return &models.CampaignResponse{
		ID:          campaign.ID,
		Name:        campaign.Name,
		Description: campaign.Description,
		Status:      campaign.Status,
		Items:       items,
		Donations:   donations,
		CreatedAt:   campaign.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   campaign.UpdatedAt.Format(time.RFC3339),
	}
}
