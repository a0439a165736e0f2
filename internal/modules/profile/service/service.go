package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	profileDto "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/dto"
	profileRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/repository"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	search "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
	"github.com/raunak23427/mutual-skill-sync/pkg/storage"
	"gorm.io/gorm"
)

var ErrStorageUnavailable = apperror.New(http.StatusServiceUnavailable, "photo storage is not configured", nil)

type ProfileService interface {
	SyncProfile(ctx context.Context, ident identity.Identity) (*entity.Profile, error)
	FindByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error)
	GetCurrentProfile(ctx context.Context, profileID uuid.UUID) (*entity.Profile, error)
	GetPublicProfile(ctx context.Context, viewerID, profileID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profileID uuid.UUID, input profileDto.UpdateProfileInput) (*entity.Profile, error)
	UploadPhoto(ctx context.Context, profileID uuid.UUID, photo *commonDto.PhotoFile) (*entity.Profile, error)
	DeletePhoto(ctx context.Context, profileID uuid.UUID) (*entity.Profile, error)
	BrowseProfiles(ctx context.Context, viewerID uuid.UUID, query profileDto.BrowseProfilesQuery) ([]entity.Profile, error)
	SearchToken(ctx context.Context, ident *identity.Identity) (string, error)
}

type profileService struct {
	repo         profileRepo.ProfileRepository
	imageStorage storage.ImageStorage
	indexer      *search.Indexer
	publisher    realtime.Publisher
}

func NewProfileService(repo profileRepo.ProfileRepository, imageStorage storage.ImageStorage, indexer *search.Indexer, publisher realtime.Publisher) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		indexer:      indexer,
		publisher:    publisher,
	}
}

// SyncProfile makes sure the identity has a profile row and that the row
// mirrors the identity provider's email, name and image.
func (s *profileService) SyncProfile(ctx context.Context, ident identity.Identity) (*entity.Profile, error) {
	if ident.ID == "" {
		return nil, apperror.ErrUnauthorized
	}

	profile, err := s.repo.FindByClerkID(ctx, ident.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	if profile == nil {
		profile = newProfileFromIdentity(ident)
		if err := s.repo.Create(ctx, profile); err != nil {
			// A concurrent first sync may have inserted the row already.
			existing, findErr := s.repo.FindByClerkID(ctx, ident.ID)
			if findErr != nil {
				metrics.ProfileSyncs.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("failed to create profile: %w", err)
			}
			profile = existing
		} else {
			metrics.ProfileSyncs.WithLabelValues("created").Inc()
			log.Printf("Created profile %s for %s", profile.ID, ident.ID)
			s.afterChange(ctx, realtime.EventInsert, profile)
			return profile, nil
		}
	}

	if !s.applyIdentity(profile, ident) {
		metrics.ProfileSyncs.WithLabelValues("unchanged").Inc()
		return profile, nil
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		metrics.ProfileSyncs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	metrics.ProfileSyncs.WithLabelValues("updated").Inc()
	s.afterChange(ctx, realtime.EventUpdate, profile)

	return profile, nil
}

func newProfileFromIdentity(ident identity.Identity) *entity.Profile {
	p := &entity.Profile{
		ClerkID:      ident.ID,
		Email:        ident.Email,
		FullName:     ident.FullName,
		Availability: entity.DefaultAvailability,
		IsPublic:     true,
		Rating:       0,
		TotalSwaps:   0,
		Status:       entity.ProfileStatusActive,
	}
	if ident.ImageURL != "" {
		url := ident.ImageURL
		p.AvatarURL = &url
	}
	return p
}

// applyIdentity copies non-empty identity fields onto the profile and reports
// whether anything changed. A photo uploaded to our own storage is kept.
func (s *profileService) applyIdentity(p *entity.Profile, ident identity.Identity) bool {
	changed := false
	if ident.Email != "" && ident.Email != p.Email {
		p.Email = ident.Email
		changed = true
	}
	if ident.FullName != "" && ident.FullName != p.FullName {
		p.FullName = ident.FullName
		changed = true
	}
	if ident.ImageURL != "" {
		current := ""
		if p.AvatarURL != nil {
			current = *p.AvatarURL
		}
		ownPhoto := current != "" && s.imageStorage != nil && s.imageStorage.Owns(current)
		if current != ident.ImageURL && !ownPhoto {
			url := ident.ImageURL
			p.AvatarURL = &url
			changed = true
		}
	}
	return changed
}

func (s *profileService) FindByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error) {
	profile, err := s.repo.FindByClerkID(ctx, clerkID)
	if err != nil {
		return nil, translate(err)
	}
	return profile, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, profileID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err)
	}
	return profile, nil
}

// GetPublicProfile hides private or inactive profiles from everyone but
// their owner.
func (s *profileService) GetPublicProfile(ctx context.Context, viewerID, profileID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err)
	}
	if profile.ID != viewerID && !profile.IsVisible() {
		return nil, fmt.Errorf("profile %s: %w", profileID, apperror.ErrNotFound)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, profileID uuid.UUID, input profileDto.UpdateProfileInput) (*entity.Profile, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err)
	}

	if input.FullName != nil {
		name := sanitize.Text(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name cannot be empty: %w", apperror.ErrInvalidInput)
		}
		profile.FullName = name
	}
	if input.Location != nil {
		profile.Location = sanitize.Optional(input.Location)
	}
	if input.Availability != nil {
		availability := sanitize.Text(*input.Availability)
		if availability == "" {
			return nil, fmt.Errorf("availability cannot be empty: %w", apperror.ErrInvalidInput)
		}
		profile.Availability = availability
	}
	if input.IsPublic != nil {
		profile.IsPublic = *input.IsPublic
	}
	if input.Bio != nil {
		profile.Bio = sanitize.Optional(input.Bio)
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.afterChange(ctx, realtime.EventUpdate, profile)

	return profile, nil
}

// UploadPhoto stores a new photo and removes the previous one when it lives
// in our bucket.
func (s *profileService) UploadPhoto(ctx context.Context, profileID uuid.UUID, photo *commonDto.PhotoFile) (*entity.Profile, error) {
	if s.imageStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if photo == nil || photo.Reader == nil {
		return nil, fmt.Errorf("photo is required: %w", apperror.ErrBadRequest)
	}

	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err)
	}

	url, err := s.imageStorage.UploadImage(ctx, photo.Reader, profileID.String(), photo.FileName)
	if err != nil {
		return nil, err
	}

	previous := profile.AvatarURL
	if err := s.repo.UpdateAvatar(ctx, profileID, &url); err != nil {
		if delErr := s.imageStorage.DeleteImage(ctx, url); delErr != nil {
			log.Printf("Failed to clean up uploaded photo %s: %v", url, delErr)
		}
		return nil, fmt.Errorf("failed to save photo url: %w", err)
	}
	profile.AvatarURL = &url

	if previous != nil && *previous != url && s.imageStorage.Owns(*previous) {
		if err := s.imageStorage.DeleteImage(ctx, *previous); err != nil {
			log.Printf("Failed to delete previous photo %s: %v", *previous, err)
		}
	}

	s.afterChange(ctx, realtime.EventUpdate, profile)
	return profile, nil
}

func (s *profileService) DeletePhoto(ctx context.Context, profileID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err)
	}
	if profile.AvatarURL == nil {
		return profile, nil
	}

	current := *profile.AvatarURL
	if s.imageStorage != nil && s.imageStorage.Owns(current) {
		if err := s.imageStorage.DeleteImage(ctx, current); err != nil {
			log.Printf("Failed to delete photo %s: %v", current, err)
		}
	}

	if err := s.repo.UpdateAvatar(ctx, profileID, nil); err != nil {
		return nil, fmt.Errorf("failed to clear photo: %w", err)
	}
	profile.AvatarURL = nil

	s.afterChange(ctx, realtime.EventUpdate, profile)
	return profile, nil
}

func (s *profileService) BrowseProfiles(ctx context.Context, viewerID uuid.UUID, query profileDto.BrowseProfilesQuery) ([]entity.Profile, error) {
	filter := search.ProfileFilter{
		Query:     query.Query,
		Category:  query.Category,
		ExcludeID: viewerID,
	}
	if query.SkillID != "" {
		id, err := uuid.Parse(query.SkillID)
		if err != nil {
			return nil, fmt.Errorf("invalid skill_id: %w", apperror.ErrBadRequest)
		}
		filter.SkillID = id
	}

	profiles, err := s.repo.FindVisibleWithSkills(ctx)
	if err != nil {
		return nil, err
	}
	return search.FilterProfiles(profiles, filter), nil
}

func (s *profileService) SearchToken(ctx context.Context, ident *identity.Identity) (string, error) {
	token, err := s.indexer.SearchToken(ident.IsAdmin())
	if err != nil {
		if errors.Is(err, search.ErrSearchUnavailable) {
			return "", apperror.New(http.StatusServiceUnavailable, err.Error(), err)
		}
		return "", err
	}
	return token, nil
}

func (s *profileService) afterChange(ctx context.Context, eventType string, profile *entity.Profile) {
	s.indexer.Refresh(ctx, profile.ID)
	s.publisher.PublishProfile(ctx, eventType, profile)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("profile: %w", apperror.ErrNotFound)
	}
	return err
}
