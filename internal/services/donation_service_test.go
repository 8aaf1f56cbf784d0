package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/services/events"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// capturePublisher records published events in memory.
type capturePublisher struct {
	published []events.DonationEvent
}

func (p *capturePublisher) PublishDonationEvent(event events.DonationEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCampaign(t *testing.T, db *gorm.DB, name string, items ...models.CampaignItem) *models.Campaign {
	t.Helper()
	campaign := &models.Campaign{
		Name:   name,
		Status: models.CampaignStatusActive,
		Items:  items,
	}
	require.NoError(t, db.Create(campaign).Error)
	return campaign
}

func riceItem(goal, donated float64) models.CampaignItem {
	return models.CampaignItem{
		Name:          "Arroz",
		Measure:       "kg",
		Goal:          goal,
		AmountDonated: donated,
		Status:        models.ItemStatusAvailable,
	}
}

func loadItem(t *testing.T, db *gorm.DB, campaignID, name, measure string) *models.CampaignItem {
	t.Helper()
	var item models.CampaignItem
	err := db.Where("campaign_id = ? AND name = ? AND measure = ?", campaignID, name, measure).
		First(&item).Error
	require.NoError(t, err)
	return &item
}

func TestSubmitDonationRecordsPending(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturePublisher{}
	svc := NewDonationService(db, publisher)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   2,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)
	require.NotEmpty(t, donationID)

	var donation models.Donation
	require.NoError(t, db.First(&donation, "id = ?", donationID).Error)
	assert.Equal(t, models.DonationStatusPending, donation.Status)
	assert.Equal(t, donor.ID, donation.UserID)
	assert.Equal(t, 2.0, donation.Quantity)
	assert.False(t, donation.DonationDate.IsZero())

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 2.0, item.AmountDonated)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.DonationCreated, publisher.published[0].Type)
	assert.Equal(t, donationID, publisher.published[0].DonationID)
}

func TestSubmitDonationRejectsOvershoot(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 8))

	_, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   3,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 8.0, item.AmountDonated)

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitDonationFillsRemainingExactly(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 8))

	_, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   2,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 10.0, item.AmountDonated)
	assert.Equal(t, models.ItemStatusReserved, item.Status)

	// The item left the available pool, so nothing more can be donated.
	_, err = svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   1,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubmitDonationUnknownCampaign(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)

	_, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   1,
		Measure:    "kg",
		CampaignID: "00000000-0000-0000-0000-000000000000",
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSubmitDonationMeasureMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	_, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   1,
		Measure:    "unidade",
		CampaignID: campaign.ID,
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubmitDonationIdempotencyKeyReplay(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	req := &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   2,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}

	firstID, err := svc.SubmitDonation(donor.ID, req, "retry-abc")
	require.NoError(t, err)

	secondID, err := svc.SubmitDonation(donor.ID, req, "retry-abc")
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 2.0, item.AmountDonated)

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmDonation(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturePublisher{}
	svc := NewDonationService(db, publisher)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName:   "Arroz",
		Quantity:   4,
		Measure:    "kg",
		CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmDonation(donationID))

	var donation models.Donation
	require.NoError(t, db.First(&donation, "id = ?", donationID).Error)
	assert.Equal(t, models.DonationStatusConfirmed, donation.Status)

	// Goal not reached yet, the item stays available.
	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, models.ItemStatusAvailable, item.Status)

	require.Len(t, publisher.published, 2)
	assert.Equal(t, events.DonationConfirmed, publisher.published[1].Type)
}

func TestConfirmLastPendingConcludesItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	firstID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 6, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	secondID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 4, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, models.ItemStatusReserved, item.Status)

	require.NoError(t, svc.ConfirmDonation(firstID))
	item = loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, models.ItemStatusReserved, item.Status)

	require.NoError(t, svc.ConfirmDonation(secondID))
	item = loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, models.ItemStatusConcluded, item.Status)
}

func TestConfirmDonationIdempotent(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturePublisher{}
	svc := NewDonationService(db, publisher)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 2, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmDonation(donationID))
	require.NoError(t, svc.ConfirmDonation(donationID))

	confirmed := 0
	for _, event := range publisher.published {
		if event.Type == events.DonationConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
}

func TestConfirmDonationNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	err := svc.ConfirmDonation("00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCancelDonationReturnsQuantity(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturePublisher{}
	svc := NewDonationService(db, publisher)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 3, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelDonation(donationID, donor.ID, false))

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Where("id = ?", donationID).Count(&count).Error)
	assert.Zero(t, count)

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 0.0, item.AmountDonated)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)

	assert.Equal(t, events.DonationCancelled, publisher.published[len(publisher.published)-1].Type)
}

func TestCancelDonationReopensReservedItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(5, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 5, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	require.Equal(t, models.ItemStatusReserved, item.Status)

	require.NoError(t, svc.CancelDonation(donationID, donor.ID, false))

	item = loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 0.0, item.AmountDonated)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)
}

func TestCancelDonationOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	other := seedUser(t, db, "João", "joao@example.com", models.RoleDonor)
	admin := seedUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 2, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)

	err = svc.CancelDonation(donationID, other.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// An administrator may cancel on behalf of anyone.
	require.NoError(t, svc.CancelDonation(donationID, admin.ID, true))
}

func TestCancelConfirmedDonationRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))

	donationID, err := svc.SubmitDonation(donor.ID, &models.CreateDonationRequest{
		ItemName: "Arroz", Quantity: 2, Measure: "kg", CampaignID: campaign.ID,
	}, "")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmDonation(donationID))

	err = svc.CancelDonation(donationID, donor.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	item := loadItem(t, db, campaign.ID, "Arroz", "kg")
	assert.Equal(t, 2.0, item.AmountDonated)
}
