package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database/repository"
	"github.com/doeagora/doe-agora-backend/internal/models"
	"github.com/doeagora/doe-agora-backend/internal/services/events"
)

// DonationService owns the donation ledger: submitting, confirming and
// cancelling donations, and keeping each item's aggregate progress and status
// consistent with the donation rows. Every mutation runs in one database
// transaction, so the donation insert and the item update cannot diverge.
type DonationService struct {
	db           *gorm.DB
	donationRepo *repository.DonationRepository
	publisher    events.Publisher
}

func NewDonationService(db *gorm.DB, publisher events.Publisher) *DonationService {
	return &DonationService{
		db:           db,
		donationRepo: repository.NewDonationRepository(db),
		publisher:    publisher,
	}
}

// SubmitDonation records a pending donation against a campaign item and
// advances the item's donated amount. A quantity that would push the amount
// past the goal is rejected outright; partial acceptance is never performed.
// idempotencyKey may be empty; when set, a replay returns the donation
// created by the first submission.
func (s *DonationService) SubmitDonation(userID string, req *models.CreateDonationRequest, idempotencyKey string) (string, error) {
	if idempotencyKey != "" {
		existing, err := s.donationRepo.GetByIdempotencyKey(idempotencyKey)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.Internal("failed to check idempotency key", err)
		}
	}

	donorID := userID
	if req.UserID != "" {
		donorID = req.UserID
	}

	var donation models.Donation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, "id = ?", req.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("campaign %s not found", req.CampaignID)
			}
			return err
		}

		var item models.CampaignItem
		err := tx.Where(
			"campaign_id = ? AND name = ? AND measure = ? AND status = ?",
			req.CampaignID, req.ItemName, req.Measure, models.ItemStatusAvailable,
		).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("item not found, measure mismatch or item not available")
			}
			return err
		}

		if item.AmountDonated+req.Quantity > item.Goal {
			return apperrors.Validation("donation exceeds the goal for item %s", req.ItemName)
		}

		// Conditional increment: the goal bound is re-checked by the database
		// itself, so two concurrent submissions cannot both consume the same
		// remaining quantity.
		result := tx.Model(&models.CampaignItem{}).
			Where("id = ? AND amount_donated + ? <= goal", item.ID, req.Quantity).
			Update("amount_donated", gorm.Expr("amount_donated + ?", req.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Validation("donation exceeds the goal for item %s", req.ItemName)
		}

		donation = models.Donation{
			CampaignID:   req.CampaignID,
			UserID:       donorID,
			ItemName:     req.ItemName,
			Measure:      req.Measure,
			Quantity:     req.Quantity,
			Status:       models.DonationStatusPending,
			DonationDate: time.Now(),
		}
		if idempotencyKey != "" {
			key := idempotencyKey
			donation.IdempotencyKey = &key
		}
		if err := tx.Create(&donation).Error; err != nil {
			return err
		}

		return s.recomputeItemStatus(tx, item.ID)
	})
	if err != nil {
		return "", err
	}

	s.publish(events.DonationCreated, &donation)
	return donation.ID, nil
}

// ConfirmDonation marks a donation confirmed and re-runs the item status
// recompute, promoting a fully donated item from reserved to concluded once
// nothing remains pending. Confirming an already confirmed donation is a
// no-op.
func (s *DonationService) ConfirmDonation(donationID string) error {
	var donation models.Donation
	alreadyConfirmed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&donation, "id = ?", donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("donation %s not found", donationID)
			}
			return err
		}

		var campaign models.Campaign
		if err := tx.First(&campaign, "id = ?", donation.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("campaign %s not found", donation.CampaignID)
			}
			return err
		}

		if donation.Status == models.DonationStatusConfirmed {
			alreadyConfirmed = true
			return nil
		}

		if err := tx.Model(&donation).Update("status", models.DonationStatusConfirmed).Error; err != nil {
			return err
		}
		donation.Status = models.DonationStatusConfirmed

		return s.recomputeItemStatusByKey(tx, donation.CampaignID, donation.ItemName, donation.Measure)
	})
	if err != nil {
		return err
	}

	if !alreadyConfirmed {
		s.publish(events.DonationConfirmed, &donation)
	}
	return nil
}

// CancelDonation removes a pending donation and gives its quantity back to
// the item, reopening the item when it drops below goal. Only the donor or an
// administrator may cancel, and confirmed donations are immutable.
func (s *DonationService) CancelDonation(donationID, requesterID string, isAdmin bool) error {
	var donation models.Donation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&donation, "id = ?", donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("donation %s not found", donationID)
			}
			return err
		}

		if !isAdmin && donation.UserID != requesterID {
			return apperrors.Forbidden("donation %s does not belong to the requesting user", donationID)
		}
		if donation.Status != models.DonationStatusPending {
			return apperrors.Validation("only pending donations can be cancelled")
		}

		if err := tx.Delete(&donation).Error; err != nil {
			return err
		}

		result := tx.Model(&models.CampaignItem{}).
			Where("campaign_id = ? AND name = ? AND measure = ? AND amount_donated >= ?",
				donation.CampaignID, donation.ItemName, donation.Measure, donation.Quantity).
			Update("amount_donated", gorm.Expr("amount_donated - ?", donation.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Item gone or ledger drifted; nothing left to roll back.
			logrus.Warnf("cancel of donation %s found no matching item to decrement", donationID)
			return nil
		}

		return s.recomputeItemStatusByKey(tx, donation.CampaignID, donation.ItemName, donation.Measure)
	})
	if err != nil {
		return err
	}

	s.publish(events.DonationCancelled, &donation)
	return nil
}

// recomputeItemStatus reloads the item and derives its status from the
// current rows: goal reached with pending donations means reserved, goal
// reached with none pending means concluded, otherwise available.
func (s *DonationService) recomputeItemStatus(tx *gorm.DB, itemID string) error {
	var item models.CampaignItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		return err
	}

	var pending int64
	err := tx.Model(&models.Donation{}).
		Where("campaign_id = ? AND item_name = ? AND measure = ? AND status = ?",
			item.CampaignID, item.Name, item.Measure, models.DonationStatusPending).
		Count(&pending).Error
	if err != nil {
		return err
	}

	status := models.ItemStatusAvailable
	if item.AmountDonated >= item.Goal {
		if pending > 0 {
			status = models.ItemStatusReserved
		} else {
			status = models.ItemStatusConcluded
		}
	}

	if status == item.Status {
		return nil
	}
	return tx.Model(&item).Update("status", status).Error
}

// recomputeItemStatusByKey locates the item by its (campaign, name, measure)
// key. A missing item is logged and ignored; the donation row remains valid
// even when the catalog entry was removed.
func (s *DonationService) recomputeItemStatusByKey(tx *gorm.DB, campaignID, itemName, measure string) error {
	var item models.CampaignItem
	err := tx.Where("campaign_id = ? AND name = ? AND measure = ?", campaignID, itemName, measure).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.Warnf("no catalog item (%s, %s) in campaign %s during status recompute", itemName, measure, campaignID)
			return nil
		}
		return err
	}
	return s.recomputeItemStatus(tx, item.ID)
}

// publish emits a donation event, best effort. The ledger write has already
// committed; a broker outage only costs the notification.
func (s *DonationService) publish(eventType string, donation *models.Donation) {
	if s.publisher == nil {
		return
	}
	event := events.DonationEvent{
		Type:       eventType,
		DonationID: donation.ID,
		CampaignID: donation.CampaignID,
		UserID:     donation.UserID,
		ItemName:   donation.ItemName,
		Measure:    donation.Measure,
		Quantity:   donation.Quantity,
		Status:     donation.Status,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishDonationEvent(event); err != nil {
		logrus.Warnf("Failed to publish %s event for donation %s: %v", eventType, donation.ID, err)
	}
}
