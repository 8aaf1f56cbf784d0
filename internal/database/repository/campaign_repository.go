package repository

import (
	"github.com/doeagora/doe-agora-backend/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign with its item catalog
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID with its items and donations
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Preload("Items").
		Preload("Donations", func(db *gorm.DB) *gorm.DB {
			return db.Order("donation_date DESC")
		}).
		First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Exists reports whether a campaign with the given ID exists
func (r *CampaignRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update updates a campaign
func (r *CampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// GetAll retrieves all campaigns with their items
func (r *CampaignRepository) GetAll() ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Preload("Items").
		Order("created_at DESC").
		Find(&campaigns).Error
	return campaigns, err
}
