// Package excel builds spreadsheet exports for administrators.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
)

// Service exports donation data to xlsx workbooks.
type Service struct {
	donationRepo *repository.DonationRepository
}

// NewExcelService creates a new Excel service instance
func NewExcelService(donationRepo *repository.DonationRepository) *Service {
	return &Service{donationRepo: donationRepo}
}

const donationsSheet = "Donations"

var donationHeaders = []string{
	"ID", "Campaign", "Item", "Quantity", "Measure", "Donor", "Donor Email", "Status", "Date",
}

// ExportDonations builds a workbook with every donation, newest first.
// Confirmed rows are tinted green, pending rows orange.
func (s *Service) ExportDonations() (*excelize.File, error) {
	rows, err := s.donationRepo.GetAllForExport()
	if err != nil {
		return nil, fmt.Errorf("failed to load donations: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(donationsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	confirmedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"C6EFCE"}, // Green
			Pattern: 1,
		},
	})
	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFEB9C"}, // Orange
			Pattern: 1,
		},
	})

	for col, header := range donationHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(donationsSheet, cell, header)
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []interface{}{
			row.ID,
			row.CampaignName,
			row.ItemName,
			row.Quantity,
			row.Measure,
			row.UserName,
			row.UserEmail,
			row.Status,
			row.Date.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			f.SetCellValue(donationsSheet, cell, value)
		}

		style := pendingStyle
		if row.Status == models.DonationStatusConfirmed {
			style = confirmedStyle
		}
		firstCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		lastCell, _ := excelize.CoordinatesToCellName(len(values), rowNum)
		f.SetCellStyle(donationsSheet, firstCell, lastCell, style)
	}

	return f, nil
}
