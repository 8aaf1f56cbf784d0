package handlers

import (
	"net/http"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/services"
	"github.com/doeagora/doe-agora-backend/internal/services/events"
	"github.com/doeagora/doe-agora-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DonationHandler struct {
	donationService *services.DonationService
	queryService    *services.DonationQueryService
}

func NewDonationHandler(db *gorm.DB, publisher events.Publisher) *DonationHandler {
	return &DonationHandler{
		donationService: services.NewDonationService(db, publisher),
		queryService:    services.NewDonationQueryService(db),
	}
}

// listParams reads the shared pagination and filter query parameters.
func listParams(c *gin.Context) services.DonationListParams {
	page, limit := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("limit"))
	return services.DonationListParams{
		Page:        page,
		Limit:       limit,
		FilterBy:    c.Query("filterBy"),
		FilterValue: c.Query("filterValue"),
	}
}

// CreateDonation godoc
// @Summary Submit a donation
// @Description Record a pending donation against an available campaign item
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client idempotency key"
// @Param request body models.CreateDonationRequest true "Donation request"
// @Success 201 {object} models.CreateDonationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/donations [post]
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	donationID, err := h.donationService.SubmitDonation(userID, &req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateDonationResponse{DonationID: donationID})
}

// GetDonations godoc
// @Summary List donations
// @Description Paginated listing of all donations, optionally filtered
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param filterBy query string false "Field to filter on"
// @Param filterValue query string false "Substring to match, case-insensitive"
// @Success 200 {object} models.DonationListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/donations [get]
func (h *DonationHandler) GetDonations(c *gin.Context) {
	response, err := h.queryService.ListAll(listParams(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetDonationsByCampaign godoc
// @Summary List a campaign's donations
// @Description Paginated listing of one campaign's donations joined with donor info
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param campaignId path string true "Campaign ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param filterBy query string false "Field to filter on"
// @Param filterValue query string false "Substring to match, case-insensitive"
// @Success 200 {object} models.DonationListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/donations/campaign/{campaignId} [get]
func (h *DonationHandler) GetDonationsByCampaign(c *gin.Context) {
	response, err := h.queryService.ListByCampaign(c.Param("campaignId"), listParams(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetDonationsByUser godoc
// @Summary List a user's donations
// @Description Paginated listing of one user's donations joined with campaign names
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param filterBy query string false "Field to filter on"
// @Param filterValue query string false "Substring to match, case-insensitive"
// @Success 200 {object} models.DonationListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/donations/user/{userID} [get]
func (h *DonationHandler) GetDonationsByUser(c *gin.Context) {
	response, err := h.queryService.ListByUser(c.Param("userID"), listParams(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// CancelDonation godoc
// @Summary Cancel a pending donation
// @Description Delete a pending donation and return its quantity to the item goal
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param donation_id path string true "Donation ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/donations/{donation_id} [delete]
func (h *DonationHandler) CancelDonation(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	isAdmin := c.GetBool("is_admin")

	err := h.donationService.CancelDonation(c.Param("donation_id"), userID, isAdmin)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
