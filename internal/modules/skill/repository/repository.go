package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
)

type SkillRepository interface {
	Create(ctx context.Context, skill *entity.Skill) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Skill, error)
	FindByName(ctx context.Context, name string) (*entity.Skill, error)
	FindApproved(ctx context.Context) ([]entity.Skill, error)
	ApprovedCategories(ctx context.Context) ([]string, error)

	FindOffered(ctx context.Context, userID uuid.UUID) ([]entity.UserSkillOffered, error)
	FindWanted(ctx context.Context, userID uuid.UUID) ([]entity.UserSkillWanted, error)
	HasOffered(ctx context.Context, userID, skillID uuid.UUID) (bool, error)
	HasWanted(ctx context.Context, userID, skillID uuid.UUID) (bool, error)
	CreateOffered(ctx context.Context, offered *entity.UserSkillOffered) error
	CreateWanted(ctx context.Context, wanted *entity.UserSkillWanted) error
	DeleteOffered(ctx context.Context, userID, id uuid.UUID) (int64, error)
	DeleteWanted(ctx context.Context, userID, id uuid.UUID) (int64, error)
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) Create(ctx context.Context, skill *entity.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *skillRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Skill, error) {
	var skill entity.Skill
	if err := r.db.WithContext(ctx).First(&skill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

// FindByName matches case-insensitively.
func (r *skillRepository) FindByName(ctx context.Context, name string) (*entity.Skill, error) {
	var skill entity.Skill
	if err := r.db.WithContext(ctx).Where("name_key = ?", entity.SkillNameKey(name)).First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) FindApproved(ctx context.Context) ([]entity.Skill, error) {
	var skills []entity.Skill
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", true).
		Order("name ASC").
		Find(&skills).Error
	return skills, err
}

func (r *skillRepository) ApprovedCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&entity.Skill{}).
		Where("is_approved = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *skillRepository) FindOffered(ctx context.Context, userID uuid.UUID) ([]entity.UserSkillOffered, error) {
	var offered []entity.UserSkillOffered
	err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&offered).Error
	return offered, err
}

func (r *skillRepository) FindWanted(ctx context.Context, userID uuid.UUID) ([]entity.UserSkillWanted, error) {
	var wanted []entity.UserSkillWanted
	err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&wanted).Error
	return wanted, err
}

func (r *skillRepository) HasOffered(ctx context.Context, userID, skillID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserSkillOffered{}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Count(&count).Error
	return count > 0, err
}

func (r *skillRepository) HasWanted(ctx context.Context, userID, skillID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserSkillWanted{}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Count(&count).Error
	return count > 0, err
}

func (r *skillRepository) CreateOffered(ctx context.Context, offered *entity.UserSkillOffered) error {
	return r.db.WithContext(ctx).Omit("Skill").Create(offered).Error
}

func (r *skillRepository) CreateWanted(ctx context.Context, wanted *entity.UserSkillWanted) error {
	return r.db.WithContext(ctx).Omit("Skill").Create(wanted).Error
}

func (r *skillRepository) DeleteOffered(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.UserSkillOffered{})
	return res.RowsAffected, res.Error
}

func (r *skillRepository) DeleteWanted(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.UserSkillWanted{})
	return res.RowsAffected, res.Error
}
