package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindVisibleWithSkills(ctx context.Context) ([]entity.Profile, error)
	FindAllWithSkills(ctx context.Context) ([]entity.Profile, error)
	Create(ctx context.Context, profile *entity.Profile) error
	Save(ctx context.Context, profile *entity.Profile) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func withSkills(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SkillsOffered", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("SkillsOffered.Skill").
		Preload("SkillsWanted", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("SkillsWanted.Skill")
}

func (r *profileRepository) FindByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := withSkills(r.db.WithContext(ctx)).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindVisibleWithSkills lists public active profiles, newest first.
func (r *profileRepository) FindVisibleWithSkills(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := withSkills(r.db.WithContext(ctx)).
		Where("is_public = ? AND status = ?", true, entity.ProfileStatusActive).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) FindAllWithSkills(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := withSkills(r.db.WithContext(ctx)).Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

func (r *profileRepository) Save(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (r *profileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}
