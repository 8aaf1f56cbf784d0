package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation lifecycle states. A donation is created pending and becomes
// confirmed after administrative approval.
const (
	DonationStatusPending   = "pendente"
	DonationStatusConfirmed = "confirmada"
)

// Donation is a single contribution against one campaign item, matched by
// (item_name, measure) within the campaign. It is the single source of truth
// for donation state; campaign views join it at read time.
type Donation struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string  `json:"campaign_id" gorm:"not null;index;type:uuid"`
	UserID     string  `json:"user_id" gorm:"not null;index;type:uuid"`
	ItemName   string  `json:"item_name" gorm:"type:varchar(255);not null;index"`
	Measure    string  `json:"measure" gorm:"type:varchar(32);not null"`
	Quantity   float64 `json:"quantity" gorm:"type:numeric;not null"`
	Status     string  `json:"status" gorm:"type:varchar(32);not null;default:'pendente';index"`
	// IdempotencyKey dedupes client retries of the same submission. Unique
	// when set; NULL rows do not collide.
	IdempotencyKey *string   `json:"-" gorm:"type:varchar(255);uniqueIndex"`
	DonationDate   time.Time `json:"donation_date" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Donation model
func (Donation) TableName() string {
	return "donations"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CreateDonationRequest represents the request to submit a donation.
// UserID is optional; when absent the authenticated user is the donor.
type CreateDonationRequest struct {
	ItemName   string  `json:"item_name" binding:"required" example:"Arroz"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0" example:"2"`
	Measure    string  `json:"measure" binding:"required" example:"kg"`
	CampaignID string  `json:"campaign_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID     string  `json:"user_id,omitempty"`
}

// DonationResponse is the plain projection of a donation row.
type DonationResponse struct {
	ID         string    `json:"id"`
	ItemName   string    `json:"item_name"`
	Quantity   float64   `json:"quantity"`
	Measure    string    `json:"measure"`
	CampaignID string    `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
}

// ToResponse converts a Donation to its listing projection.
func (d *Donation) ToResponse() DonationResponse {
	return DonationResponse{
		ID:         d.ID,
		ItemName:   d.ItemName,
		Quantity:   d.Quantity,
		Measure:    d.Measure,
		CampaignID: d.CampaignID,
		UserID:     d.UserID,
		Status:     d.Status,
		Date:       d.DonationDate,
	}
}

// DonationListRow is a donation joined with display fields from its user or
// campaign, depending on the listing scope.
type DonationListRow struct {
	ID           string    `json:"id"`
	ItemName     string    `json:"item_name"`
	Quantity     float64   `json:"quantity"`
	Measure      string    `json:"measure"`
	CampaignID   string    `json:"campaign_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	Date         time.Time `json:"date"`
	UserName     string    `json:"user_name,omitempty"`
	UserEmail    string    `json:"user_email,omitempty"`
	CampaignName string    `json:"campaign_name,omitempty"`
}

// DonationListResponse is the paginated listing envelope.
type DonationListResponse struct {
	Page           int               `json:"page"`
	Limit          int               `json:"limit"`
	TotalResponses int64             `json:"totalResponses"`
	Donations      []DonationListRow `json:"donations"`
}

// CreateDonationResponse carries the identifier of a newly created donation.
type CreateDonationResponse struct {
	DonationID string `json:"donationId"`
}
