package handlers

import (
	"net/http"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
}

func NewCampaignHandler(db *gorm.DB) *CampaignHandler {
	campaignRepo := repository.NewCampaignRepository(db)
	return &CampaignHandler{
		campaignService: services.NewCampaignService(campaignRepo),
	}
}

// CreateCampaign godoc
// @Summary Create a campaign
// @Description Create a campaign with its item catalog
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Create campaign request"
// @Success 201 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.campaignService.CreateCampaign(&req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetCampaigns godoc
// @Summary List campaigns
// @Description Get all campaigns with their item catalogs
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CampaignResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.campaignService.GetAllCampaigns()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, campaigns)
}

// GetCampaignByID godoc
// @Summary Get campaign by ID
// @Description Get a campaign with its items and donation history
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaignByID(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaignByID(c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}
