package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign lifecycle states.
const (
	CampaignStatusActive = "ativa"
	CampaignStatusClosed = "encerrada"
)

// Item states within a campaign catalog. An item starts available, becomes
// reserved when its goal is met while donations are still pending, and is
// concluded once the goal is met and every donation is confirmed.
const (
	ItemStatusAvailable = "disponível"
	ItemStatusReserved  = "reservada"
	ItemStatusConcluded = "concluida"
)

// Campaign is a donation drive with a catalog of needed items. The campaign's
// donations are a read-time join over the donations table; there is no
// embedded copy to keep in sync.
type Campaign struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:varchar(32);not null;default:'ativa';index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Items     []CampaignItem `json:"items,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
	Donations []Donation     `json:"donations,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CampaignItem tracks one needed good toward its quantity goal.
// Invariant: 0 <= AmountDonated <= Goal. The ledger enforces it with a
// conditional update, so concurrent submissions cannot overshoot.
type CampaignItem struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string `json:"campaign_id" gorm:"not null;index;type:uuid;uniqueIndex:idx_campaign_item_name_measure"`
	Name       string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_campaign_item_name_measure"`
	// Measure is the unit the goal is counted in ("kg", "unidade", "litro").
	Measure       string  `json:"measure" gorm:"type:varchar(32);not null;uniqueIndex:idx_campaign_item_name_measure"`
	Goal          float64 `json:"goal" gorm:"type:numeric;not null"`
	AmountDonated float64 `json:"amount_donated" gorm:"type:numeric;not null;default:0"`
	Status        string  `json:"status" gorm:"type:varchar(32);not null;default:'disponível';index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CampaignItem model
func (CampaignItem) TableName() string {
	return "campaign_items"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (i *CampaignItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CreateCampaignItemRequest describes one catalog entry of a new campaign.
type CreateCampaignItemRequest struct {
	Name    string  `json:"name" binding:"required" example:"Arroz"`
	Measure string  `json:"measure" binding:"required" example:"kg"`
	Goal    float64 `json:"goal" binding:"required,gt=0" example:"10"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	Name        string                      `json:"name" binding:"required" example:"Campanha do Agasalho"`
	Description string                      `json:"description" example:"Arrecadação de agasalhos para o inverno"`
	Items       []CreateCampaignItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CampaignItemResponse is the catalog entry projection.
type CampaignItemResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Measure       string  `json:"measure"`
	Goal          float64 `json:"goal"`
	AmountDonated float64 `json:"amount_donated"`
	Status        string  `json:"status"`
}

// CampaignResponse represents the response for campaign operations
type CampaignResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Status      string                 `json:"status"`
	Items       []CampaignItemResponse `json:"items"`
	Donations   []DonationResponse     `json:"donations,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}
