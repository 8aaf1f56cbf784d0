package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/services"
	"github.com/doeagora/doe-agora-backend/internal/services/events"
	"github.com/doeagora/doe-agora-backend/internal/services/excel"
	"github.com/doeagora/doe-agora-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminHandler struct {
	donationService *services.DonationService
	doneeService    *services.DoneeService
	excelService    *excel.Service
}

func NewAdminHandler(db *gorm.DB, publisher events.Publisher) *AdminHandler {
	userRepo := repository.NewUserRepository(db)
	donationRepo := repository.NewDonationRepository(db)

	return &AdminHandler{
		donationService: services.NewDonationService(db, publisher),
		doneeService:    services.NewDoneeService(userRepo),
		excelService:    excel.NewExcelService(donationRepo),
	}
}

// ConfirmDonation godoc
// @Summary Confirm a donation
// @Description Mark a pending donation as confirmed
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param donation_id path string true "Donation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/donations/{donation_id} [put]
func (h *AdminHandler) ConfirmDonation(c *gin.Context) {
	err := h.donationService.ConfirmDonation(c.Param("donation_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donation confirmed successfully"})
}

// SwitchDoneeStatus godoc
// @Summary Switch donee status
// @Description Flip a donee account between ativo and inativo
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/donees/{userID}/switch-status [put]
func (h *AdminHandler) SwitchDoneeStatus(c *gin.Context) {
	status, err := h.doneeService.SwitchStatus(c.Param("userID"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donee_status": status})
}

// GetDonees godoc
// @Summary List donee accounts
// @Description Paginated listing of donee accounts with optional name/email search
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param search query string false "Name or email substring"
// @Success 200 {object} services.DoneeListResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/donees [get]
func (h *AdminHandler) GetDonees(c *gin.Context) {
	page, limit := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("limit"))

	response, err := h.doneeService.ListDonees(page, limit, c.Query("search"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportDonations godoc
// @Summary Export donations to Excel
// @Description Download every donation as an xlsx workbook
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/donations/export [get]
func (h *AdminHandler) ExportDonations(c *gin.Context) {
	f, err := h.excelService.ExportDonations()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	filename := fmt.Sprintf("donations_%d.xlsx", time.Now().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		logrus.Errorf("Failed to stream donations export: %v", err)
	}
}
