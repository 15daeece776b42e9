package services

import (
	"context"
	"time"

	"queens/internal/apperrors"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/sirupsen/logrus"
)

// OfferService handles business logic for marketplace offers.
type OfferService struct {
	offerRepo repositories.OfferRepository
	userRepo  repositories.UserRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewOfferService creates a new OfferService.
func NewOfferService(offerRepo repositories.OfferRepository, userRepo repositories.UserRepository, log logrus.FieldLogger) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
		userRepo:  userRepo,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *OfferService) WithClock(now func() time.Time) *OfferService {
	s.now = now
	return s
}

// CreateOffer stores a new offer owned by the caller. The identifier is always server-assigned.
func (s *OfferService) CreateOffer(ctx context.Context, caller string, req *models.OfferCreateRequest) (*models.Offer, error) {
	owner := normalizeEmail(req.OwnerEmail)
	if owner == "" {
		owner = normalizeEmail(caller)
	}
	if owner != normalizeEmail(caller) {
		return nil, apperrors.Unauthorized("you may only create offers for yourself")
	}
	if _, err := s.userRepo.GetByEmail(ctx, owner); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Validation("offer owner does not exist", map[string]string{"ownerEmail": "unknown user"})
		}
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = models.DefaultOfferDurationDays
	}
	now := s.now().UTC()
	offer := &models.Offer{
		OwnerEmail: owner,
		Title:      req.Title,
		Detail:     req.Detail,
		Skill:      req.Skill,
		PointCost:  req.PointCost,
		Duration:   duration,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, duration),
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"offer_id": offer.ID, "owner": owner}).Info("offer created")
	return offer, nil
}

// GetOffer returns a single offer.
func (s *OfferService) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	return s.offerRepo.GetByID(ctx, id)
}

// ListOffers returns a page of active offers.
func (s *OfferService) ListOffers(ctx context.Context, q *models.OfferQuery) ([]models.Offer, error) {
	return s.offerRepo.ListActive(ctx, s.now().UTC(), q.Skill, q.Skip, q.Limit)
}

// UpdateOffer applies a partial update to one of the caller's offers.
// Changing the duration moves the end of the validity window.
func (s *OfferService) UpdateOffer(ctx context.Context, caller, id string, req *models.OfferUpdateRequest) (*models.Offer, error) {
	if req.Empty() {
		return nil, apperrors.Validation("No valid update data provided", nil)
	}
	offer, err := s.ownedOffer(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Detail != nil {
		offer.Detail = *req.Detail
	}
	if req.Skill != nil {
		offer.Skill = *req.Skill
	}
	if req.PointCost != nil {
		offer.PointCost = *req.PointCost
	}
	if req.Duration != nil {
		offer.Duration = *req.Duration
		offer.ExpiresAt = offer.CreatedAt.AddDate(0, 0, offer.Duration)
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// DeleteOffer removes one of the caller's offers.
func (s *OfferService) DeleteOffer(ctx context.Context, caller, id string) error {
	if _, err := s.ownedOffer(ctx, caller, id); err != nil {
		return err
	}
	return s.offerRepo.Delete(ctx, id)
}

func (s *OfferService) ownedOffer(ctx context.Context, caller, id string) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer.OwnerEmail != normalizeEmail(caller) {
		return nil, apperrors.Unauthorized("you may only change your own offers")
	}
	return offer, nil
}
