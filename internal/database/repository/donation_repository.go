package repository

import (
	"strings"

	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/utils"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create creates a new donation
func (r *DonationRepository) Create(donation *models.Donation) error {
	return r.db.Create(donation).Error
}

// GetByID retrieves a donation by ID
func (r *DonationRepository) GetByID(id string) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.First(&donation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// GetByIdempotencyKey retrieves the donation previously created with the
// given idempotency key, if any.
func (r *DonationRepository) GetByIdempotencyKey(key string) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.Where("idempotency_key = ?", key).First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// GetAllForExport retrieves all donations ordered by date, newest first.
func (r *DonationRepository) GetAllForExport() ([]models.DonationListRow, error) {
	var rows []models.DonationListRow
	err := r.db.Table("donations").
		Select(donationColumns + ", users.name AS user_name, users.email AS user_email, campaigns.name AS campaign_name").
		Joins("LEFT JOIN users ON users.id = donations.user_id").
		Joins("LEFT JOIN campaigns ON campaigns.id = donations.campaign_id").
		Order("donations.donation_date DESC").
		Scan(&rows).Error
	return rows, err
}

const donationColumns = "donations.id, donations.item_name, donations.quantity, donations.measure, " +
	"donations.campaign_id, donations.user_id, donations.status, donations.donation_date AS date"

// applyFilter appends a case-insensitive substring condition on a column that
// has already been validated against the listing's allow-list.
func applyFilter(q *gorm.DB, column, value string) *gorm.DB {
	if column == "" || value == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

// ListAll returns a page of all donations. filterColumn must come from the
// query service's allow-list; the total is the post-filter count.
func (r *DonationRepository) ListAll(filterColumn, filterValue string, page, limit int) ([]models.DonationListRow, int64, error) {
	base := func() *gorm.DB {
		return applyFilter(r.db.Table("donations"), filterColumn, filterValue)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DonationListRow
	err := base().Select(donationColumns).
		Order("donations.donation_date DESC").
		Offset(utils.CalculateOffset(page, limit)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByCampaign returns a page of a campaign's donations joined with donor
// name and email. Donations whose user row is gone are excluded; callers can
// detect them with CountOrphanedByCampaign.
func (r *DonationRepository) ListByCampaign(campaignID, filterColumn, filterValue string, page, limit int) ([]models.DonationListRow, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Table("donations").
			Joins("JOIN users ON users.id = donations.user_id").
			Where("donations.campaign_id = ?", campaignID)
		return applyFilter(q, filterColumn, filterValue)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DonationListRow
	err := base().Select(donationColumns + ", users.name AS user_name, users.email AS user_email").
		Order("donations.donation_date DESC").
		Offset(utils.CalculateOffset(page, limit)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountOrphanedByCampaign counts donations in a campaign whose user record no
// longer exists.
func (r *DonationRepository) CountOrphanedByCampaign(campaignID string) (int64, error) {
	var count int64
	err := r.db.Table("donations").
		Joins("LEFT JOIN users ON users.id = donations.user_id").
		Where("donations.campaign_id = ? AND users.id IS NULL", campaignID).
		Count(&count).Error
	return count, err
}

// ListByUser returns a page of a user's donations joined with the campaign
// display name. A deleted campaign leaves the name empty.
func (r *DonationRepository) ListByUser(userID, filterColumn, filterValue string, page, limit int) ([]models.DonationListRow, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Table("donations").
			Joins("LEFT JOIN campaigns ON campaigns.id = donations.campaign_id").
			Where("donations.user_id = ?", userID)
		return applyFilter(q, filterColumn, filterValue)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DonationListRow
	err := base().Select(donationColumns + ", campaigns.name AS campaign_name").
		Order("donations.donation_date DESC").
		Offset(utils.CalculateOffset(page, limit)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
