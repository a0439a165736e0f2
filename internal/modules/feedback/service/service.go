package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	feedbackDto "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/dto"
	feedbackRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/repository"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	search "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
	"gorm.io/gorm"
)

type FeedbackService interface {
	CreateFeedback(ctx context.Context, reviewerID uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error)
	ListReceived(ctx context.Context, profileID uuid.UUID) ([]feedbackDto.FeedbackResponse, error)
	MySummary(ctx context.Context, profileID uuid.UUID) (*Summary, error)
	PublicSummary(ctx context.Context, viewerID, profileID uuid.UUID) (*Summary, error)
}

type SwapFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SwapRequest, error)
}

type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

type feedbackService struct {
	repo      feedbackRepo.FeedbackRepository
	swaps     SwapFinder
	profiles  ProfileFinder
	indexer   *search.Indexer
	publisher realtime.Publisher
}

func NewFeedbackService(repo feedbackRepo.FeedbackRepository, swaps SwapFinder, profiles ProfileFinder, indexer *search.Indexer, publisher realtime.Publisher) FeedbackService {
	return &feedbackService{
		repo:      repo,
		swaps:     swaps,
		profiles:  profiles,
		indexer:   indexer,
		publisher: publisher,
	}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, reviewerID uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error) {
	if req.Rating < entity.MinRating || req.Rating > entity.MaxRating {
		return nil, fmt.Errorf("rating must be between %d and %d: %w", entity.MinRating, entity.MaxRating, apperror.ErrInvalidInput)
	}

	swapID, err := uuid.Parse(req.SwapID)
	if err != nil {
		return nil, fmt.Errorf("invalid swap_id: %w", apperror.ErrBadRequest)
	}

	swap, err := s.swaps.FindByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("swap request: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !swap.IsParty(reviewerID) {
		return nil, fmt.Errorf("only swap participants can leave feedback: %w", apperror.ErrForbidden)
	}
	if swap.Status != entity.SwapStatusCompleted {
		return nil, fmt.Errorf("feedback requires a completed swap: %w", apperror.ErrConflict)
	}

	exists, err := s.repo.Exists(ctx, swapID, reviewerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("feedback already submitted for this swap: %w", apperror.ErrConflict)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	fb := &entity.Feedback{
		SwapSessionID: swapID,
		ReviewerID:    reviewerID,
		RevieweeID:    swap.Counterpart(reviewerID),
		Rating:        req.Rating,
		Comment:       sanitize.Optional(req.Comment),
		IsPublic:      isPublic,
	}
	if err := s.repo.CreateAndRate(ctx, fb, averageRating); err != nil {
		// The unique index catches a concurrent duplicate.
		if exists, _ := s.repo.Exists(ctx, swapID, reviewerID); exists {
			return nil, fmt.Errorf("feedback already submitted for this swap: %w", apperror.ErrConflict)
		}
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	metrics.FeedbackSubmitted.Inc()

	s.indexer.Refresh(ctx, fb.RevieweeID)
	s.publisher.PublishProfile(ctx, realtime.EventUpdate, &entity.Profile{ID: fb.RevieweeID})

	resp := feedbackDto.NewFeedbackResponse(fb)
	return &resp, nil
}

func (s *feedbackService) ListReceived(ctx context.Context, profileID uuid.UUID) ([]feedbackDto.FeedbackResponse, error) {
	feedback, err := s.repo.FindReceived(ctx, profileID)
	if err != nil {
		return nil, err
	}

	resp := make([]feedbackDto.FeedbackResponse, 0, len(feedback))
	for i := range feedback {
		resp = append(resp, feedbackDto.NewFeedbackResponse(&feedback[i]))
	}
	return resp, nil
}

func (s *feedbackService) MySummary(ctx context.Context, profileID uuid.UUID) (*Summary, error) {
	ratings, err := s.repo.Ratings(ctx, profileID, false)
	if err != nil {
		return nil, err
	}
	summary := Summarize(ratings)
	return &summary, nil
}

// PublicSummary only counts public feedback, and only for visible profiles.
func (s *feedbackService) PublicSummary(ctx context.Context, viewerID, profileID uuid.UUID) (*Summary, error) {
	if viewerID == profileID {
		return s.MySummary(ctx, profileID)
	}

	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !p.IsVisible() {
		return nil, fmt.Errorf("profile: %w", apperror.ErrNotFound)
	}

	ratings, err := s.repo.Ratings(ctx, profileID, true)
	if err != nil {
		return nil, err
	}
	summary := Summarize(ratings)
	return &summary, nil
}
