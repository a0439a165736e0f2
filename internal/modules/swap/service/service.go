package swap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	swapDto "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/dto"
	swapRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/repository"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/ratelimiter"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type SwapService interface {
	CreateSwap(ctx context.Context, requesterID uuid.UUID, req swapDto.CreateSwapRequest) (*swapDto.SwapResponse, error)
	ListIncoming(ctx context.Context, profileID uuid.UUID) ([]swapDto.SwapResponse, error)
	ListOutgoing(ctx context.Context, profileID uuid.UUID) ([]swapDto.SwapResponse, error)
	ListCompleted(ctx context.Context, profileID uuid.UUID) ([]swapDto.CompletedSwapResponse, error)
	Accept(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error)
	Reject(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error)
	Complete(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error)
	Delete(ctx context.Context, profileID, swapID uuid.UUID) error
	ExpireStaleRequests(ctx context.Context) (int, error)
	StartExpiryWorker(ctx context.Context, interval time.Duration)
}

// ProfileFinder resolves swap participants.
type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

// SkillFinder validates skill references on new requests.
type SkillFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Skill, error)
}

type Options struct {
	// RateLimit is the cooldown between two requests from the same user.
	RateLimit time.Duration
	// RequestTTL is how long a pending request stays acceptable.
	RequestTTL time.Duration
}

type swapService struct {
	repo        swapRepo.SwapRepository
	profiles    ProfileFinder
	skills      SkillFinder
	redisClient *redis.Client
	publisher   realtime.Publisher
	opts        Options
	now         func() time.Time
}

func NewSwapService(repo swapRepo.SwapRepository, profiles ProfileFinder, skills SkillFinder, redisClient *redis.Client, publisher realtime.Publisher, opts Options) SwapService {
	return &swapService{
		repo:        repo,
		profiles:    profiles,
		skills:      skills,
		redisClient: redisClient,
		publisher:   publisher,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *swapService) CreateSwap(ctx context.Context, requesterID uuid.UUID, req swapDto.CreateSwapRequest) (*swapDto.SwapResponse, error) {
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, requesterID, ratelimiter.ScopeSwap, s.opts.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, requesterID, ratelimiter.ScopeSwap)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only send one swap request every %.0f seconds. Please wait %.0f seconds", s.opts.RateLimit.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, requesterID, ratelimiter.ScopeSwap)
		}
	}()

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient_id: %w", apperror.ErrBadRequest)
	}
	if recipientID == requesterID {
		return nil, fmt.Errorf("cannot send a swap request to yourself: %w", apperror.ErrInvalidInput)
	}

	recipient, err := s.profiles.FindByID(ctx, recipientID)
	if err != nil {
		return nil, translate(err, "recipient")
	}
	if !recipient.IsActive() {
		return nil, fmt.Errorf("recipient is not accepting swap requests: %w", apperror.ErrInvalidInput)
	}

	requesterSkillID, err := s.skillRef(ctx, req.RequesterSkillID)
	if err != nil {
		return nil, err
	}
	recipientSkillID, err := s.skillRef(ctx, req.RecipientSkillID)
	if err != nil {
		return nil, err
	}

	message := sanitize.Text(req.Message)
	if message == "" {
		message = entity.DefaultSwapMessage
	}

	now := s.now()
	swap := &entity.SwapRequest{
		RequesterID:      requesterID,
		RecipientID:      recipientID,
		RequesterSkillID: requesterSkillID,
		RecipientSkillID: recipientSkillID,
		Message:          message,
		Status:           entity.SwapStatusPending,
	}
	if s.opts.RequestTTL > 0 {
		expires := now.Add(s.opts.RequestTTL)
		swap.ExpiresAt = &expires
	}

	if err := s.repo.Create(ctx, swap); err != nil {
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}
	creationFailed = false

	metrics.SwapTransitions.WithLabelValues(entity.SwapStatusPending).Inc()
	s.publisher.PublishSwap(ctx, realtime.EventInsert, swap)

	created, err := s.repo.FindByID(ctx, swap.ID)
	if err != nil {
		return nil, translate(err, "swap request")
	}
	resp := swapDto.NewSwapResponse(created)
	return &resp, nil
}

func (s *swapService) skillRef(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid skill id: %w", apperror.ErrBadRequest)
	}
	if _, err := s.skills.FindByID(ctx, id); err != nil {
		return nil, translate(err, "skill")
	}
	return &id, nil
}

func (s *swapService) ListIncoming(ctx context.Context, profileID uuid.UUID) ([]swapDto.SwapResponse, error) {
	swaps, err := s.repo.FindIncoming(ctx, profileID)
	if err != nil {
		return nil, err
	}

	resp := make([]swapDto.SwapResponse, 0, len(swaps))
	for i := range swaps {
		item := swapDto.NewSwapResponse(&swaps[i])
		requester := swapDto.NewCounterpartResponse(&swaps[i].Requester)
		item.Requester = &requester
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *swapService) ListOutgoing(ctx context.Context, profileID uuid.UUID) ([]swapDto.SwapResponse, error) {
	swaps, err := s.repo.FindOutgoing(ctx, profileID)
	if err != nil {
		return nil, err
	}

	resp := make([]swapDto.SwapResponse, 0, len(swaps))
	for i := range swaps {
		item := swapDto.NewSwapResponse(&swaps[i])
		recipient := swapDto.NewCounterpartResponse(&swaps[i].Recipient)
		item.Recipient = &recipient
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *swapService) ListCompleted(ctx context.Context, profileID uuid.UUID) ([]swapDto.CompletedSwapResponse, error) {
	swaps, err := s.repo.FindCompleted(ctx, profileID)
	if err != nil {
		return nil, err
	}

	resp := make([]swapDto.CompletedSwapResponse, 0, len(swaps))
	for i := range swaps {
		swap := &swaps[i]
		partner := &swap.Recipient
		if swap.RecipientID == profileID {
			partner = &swap.Requester
		}
		resp = append(resp, swapDto.CompletedSwapResponse{
			SwapResponse: swapDto.NewSwapResponse(swap),
			Partner:      swapDto.NewCounterpartResponse(partner),
			CompletedAt:  swap.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *swapService) Accept(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error) {
	return s.transition(ctx, profileID, swapID, entity.SwapStatusAccepted)
}

func (s *swapService) Reject(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error) {
	return s.transition(ctx, profileID, swapID, entity.SwapStatusRejected)
}

func (s *swapService) Complete(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error) {
	return s.transition(ctx, profileID, swapID, entity.SwapStatusCompleted)
}

func (s *swapService) transition(ctx context.Context, profileID, swapID uuid.UUID, to string) (*swapDto.SwapResponse, error) {
	swap, err := s.repo.FindByID(ctx, swapID)
	if err != nil {
		return nil, translate(err, "swap request")
	}

	if err := authorizeTransition(swap, profileID, to); err != nil {
		return nil, err
	}
	if to == entity.SwapStatusAccepted && swap.IsExpired(s.now()) {
		return nil, fmt.Errorf("swap request has expired: %w", apperror.ErrConflict)
	}

	updated, err := s.repo.UpdateStatus(ctx, swap, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update swap request: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("swap request changed, reload and retry: %w", apperror.ErrConflict)
	}
	metrics.SwapTransitions.WithLabelValues(to).Inc()

	swap, err = s.repo.FindByID(ctx, swapID)
	if err != nil {
		return nil, translate(err, "swap request")
	}
	s.publisher.PublishSwap(ctx, realtime.EventUpdate, swap)

	resp := swapDto.NewSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Delete(ctx context.Context, profileID, swapID uuid.UUID) error {
	swap, err := s.repo.FindByID(ctx, swapID)
	if err != nil {
		return translate(err, "swap request")
	}
	if swap.RequesterID != profileID {
		return fmt.Errorf("only the requester can delete a swap request: %w", apperror.ErrForbidden)
	}
	if swap.Status != entity.SwapStatusPending {
		return fmt.Errorf("cannot delete a %s swap request: %w", swap.Status, apperror.ErrConflict)
	}

	n, err := s.repo.DeletePending(ctx, swapID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete swap request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("swap request changed, reload and retry: %w", apperror.ErrConflict)
	}

	s.publisher.PublishSwap(ctx, realtime.EventDelete, swap)
	return nil
}

// ExpireStaleRequests rejects pending requests whose expiry has passed and
// returns how many were rejected.
func (s *swapService) ExpireStaleRequests(ctx context.Context) (int, error) {
	stale, err := s.repo.FindExpiredPending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to load expired swap requests: %w", err)
	}

	expired := 0
	for i := range stale {
		swap := &stale[i]
		updated, err := s.repo.UpdateStatus(ctx, swap, entity.SwapStatusRejected)
		if err != nil {
			log.Printf("swap: expire %s: %v", swap.ID, err)
			continue
		}
		if !updated {
			continue
		}
		expired++
		swap.Status = entity.SwapStatusRejected
		s.publisher.PublishSwap(ctx, realtime.EventUpdate, swap)
	}

	if expired > 0 {
		metrics.SwapsExpired.Add(float64(expired))
		log.Printf("swap: expired %d pending requests", expired)
	}
	return expired, nil
}

// StartExpiryWorker runs ExpireStaleRequests every interval until ctx is done.
func (s *swapService) StartExpiryWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.ExpireStaleRequests(ctx); err != nil {
				log.Printf("swap: expiry sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}
