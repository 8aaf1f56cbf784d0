package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
)

func TestCreateCampaignWithItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	response, err := svc.CreateCampaign(&models.CreateCampaignRequest{
		Name:        "Campanha do Agasalho",
		Description: "Arrecadação de agasalhos",
		Items: []models.CreateCampaignItemRequest{
			{Name: "Cobertor", Measure: "unidade", Goal: 50},
			{Name: "Arroz", Measure: "kg", Goal: 10},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, models.CampaignStatusActive, response.Status)
	require.Len(t, response.Items, 2)
	for _, item := range response.Items {
		assert.Equal(t, models.ItemStatusAvailable, item.Status)
		assert.Zero(t, item.AmountDonated)
	}
}

func TestCreateCampaignRejectsDuplicateItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	_, err := svc.CreateCampaign(&models.CreateCampaignRequest{
		Name: "Campanha",
		Items: []models.CreateCampaignItemRequest{
			{Name: "Arroz", Measure: "kg", Goal: 10},
			{Name: "Arroz", Measure: "kg", Goal: 20},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateCampaignAllowsSameNameDifferentMeasure(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	response, err := svc.CreateCampaign(&models.CreateCampaignRequest{
		Name: "Campanha",
		Items: []models.CreateCampaignItemRequest{
			{Name: "Leite", Measure: "litro", Goal: 30},
			{Name: "Leite", Measure: "caixa", Goal: 10},
		},
	})
	require.NoError(t, err)
	assert.Len(t, response.Items, 2)
}

func TestGetCampaignByIDIncludesDonations(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	donor := seedUser(t, db, "Maria", "maria@example.com", models.RoleDonor)
	campaign := seedCampaign(t, db, "Cesta Básica", riceItem(10, 0))
	seedDonation(t, db, campaign.ID, donor.ID, "Arroz", 2, models.DonationStatusPending, time.Now())

	response, err := svc.GetCampaignByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, response.ID)
	require.Len(t, response.Items, 1)
	require.Len(t, response.Donations, 1)
	assert.Equal(t, "Arroz", response.Donations[0].ItemName)
}

func TestGetCampaignByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	_, err := svc.GetCampaignByID("00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetAllCampaigns(t *testing.T) {
	db := newTestDB(t)
	svc := NewCampaignService(repository.NewCampaignRepository(db))

	seedCampaign(t, db, "Primeira", riceItem(10, 0))
	seedCampaign(t, db, "Segunda", models.CampaignItem{
		Name: "Feijão", Measure: "kg", Goal: 5, Status: models.ItemStatusAvailable,
	})

	campaigns, err := svc.GetAllCampaigns()
	require.NoError(t, err)
	assert.Len(t, campaigns, 2)
}
