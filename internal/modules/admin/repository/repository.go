package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository interface {
	ListUsers(ctx context.Context, search, status string) ([]entity.Profile, error)
	FindUser(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	UpdateUserStatus(ctx context.Context, id uuid.UUID, status string, action *entity.AdminAction) error
	DeleteUser(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error

	ListSkills(ctx context.Context) ([]entity.Skill, error)
	FindSkill(ctx context.Context, id uuid.UUID) (*entity.Skill, error)
	FindSkillByName(ctx context.Context, name string) (*entity.Skill, error)
	CreateSkill(ctx context.Context, skill *entity.Skill, action *entity.AdminAction) error
	ApproveSkill(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error
	DeleteSkill(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error

	ListSwaps(ctx context.Context) ([]entity.SwapRequest, error)
	ListFeedback(ctx context.Context) ([]entity.Feedback, error)
	CountProfiles(ctx context.Context, status string) (int64, error)
	CountSkills(ctx context.Context, approved *bool) (int64, error)
	CountSwapsByStatus(ctx context.Context) (map[string]int64, error)
	FeedbackStats(ctx context.Context) (count int64, average float64, err error)

	CreateMessage(ctx context.Context, msg *entity.PlatformMessage, action *entity.AdminAction) error
	ListMessages(ctx context.Context, limit int) ([]entity.PlatformMessage, error)
	RecordAction(ctx context.Context, action *entity.AdminAction) error
	ListActions(ctx context.Context, limit int) ([]entity.AdminAction, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// withAudit runs fn and writes the audit row in the same transaction.
func (r *adminRepository) withAudit(ctx context.Context, action *entity.AdminAction, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Create(action).Error
	})
}

func runSteps(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *adminRepository) ListUsers(ctx context.Context, search, status string) ([]entity.Profile, error) {
	var profiles []entity.Profile
	query := r.db.WithContext(ctx)

	if search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where(`LOWER(full_name) LIKE LOWER(?) ESCAPE '\' OR LOWER(email) LIKE LOWER(?) ESCAPE '\'`, like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

func (r *adminRepository) FindUser(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *adminRepository) UpdateUserStatus(ctx context.Context, id uuid.UUID, status string, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		res := tx.Model(&entity.Profile{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteUser removes the profile and everything hanging off it. Dependents
// are deleted explicitly so the result does not depend on FK enforcement.
func (r *adminRepository) DeleteUser(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		swapIDs := tx.Model(&entity.SwapRequest{}).Select("id").
			Where("requester_id = ? OR recipient_id = ?", id, id)

		err := runSteps(
			func() error {
				return tx.Where("reviewer_id = ? OR reviewee_id = ? OR swap_session_id IN (?)", id, id, swapIDs).Delete(&entity.Feedback{}).Error
			},
			func() error {
				return tx.Where("requester_id = ? OR recipient_id = ?", id, id).Delete(&entity.SwapRequest{}).Error
			},
			func() error { return tx.Where("user_id = ?", id).Delete(&entity.UserSkillOffered{}).Error },
			func() error { return tx.Where("user_id = ?", id).Delete(&entity.UserSkillWanted{}).Error },
		)
		if err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entity.Profile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *adminRepository) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	var skills []entity.Skill
	err := r.db.WithContext(ctx).
		Order("is_approved ASC").
		Order("name ASC").
		Find(&skills).Error
	return skills, err
}

func (r *adminRepository) FindSkill(ctx context.Context, id uuid.UUID) (*entity.Skill, error) {
	var skill entity.Skill
	if err := r.db.WithContext(ctx).First(&skill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *adminRepository) FindSkillByName(ctx context.Context, name string) (*entity.Skill, error) {
	var skill entity.Skill
	if err := r.db.WithContext(ctx).Where("name_key = ?", entity.SkillNameKey(name)).First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *adminRepository) CreateSkill(ctx context.Context, skill *entity.Skill, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		if err := tx.Create(skill).Error; err != nil {
			return err
		}
		action.TargetID = &skill.ID
		return nil
	})
}

func (r *adminRepository) ApproveSkill(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		return tx.Model(&entity.Skill{}).Where("id = ?", id).Update("is_approved", true).Error
	})
}

// DeleteSkill removes the skill, detaches it from swap requests and drops
// every user link to it.
func (r *adminRepository) DeleteSkill(ctx context.Context, id uuid.UUID, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		return runSteps(
			func() error { return tx.Where("skill_id = ?", id).Delete(&entity.UserSkillOffered{}).Error },
			func() error { return tx.Where("skill_id = ?", id).Delete(&entity.UserSkillWanted{}).Error },
			func() error {
				return tx.Model(&entity.SwapRequest{}).Where("requester_skill_id = ?", id).Update("requester_skill_id", nil).Error
			},
			func() error {
				return tx.Model(&entity.SwapRequest{}).Where("recipient_skill_id = ?", id).Update("recipient_skill_id", nil).Error
			},
			func() error { return tx.Where("id = ?", id).Delete(&entity.Skill{}).Error },
		)
	})
}

func (r *adminRepository) ListSwaps(ctx context.Context) ([]entity.SwapRequest, error) {
	var swaps []entity.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		Preload("RequesterSkill").
		Preload("RecipientSkill").
		Order("created_at DESC").
		Find(&swaps).Error
	return swaps, err
}

func (r *adminRepository) ListFeedback(ctx context.Context) ([]entity.Feedback, error) {
	var feedback []entity.Feedback
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&feedback).Error
	return feedback, err
}

func (r *adminRepository) CountProfiles(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Profile{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *adminRepository) CountSkills(ctx context.Context, approved *bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Skill{})
	if approved != nil {
		query = query.Where("is_approved = ?", *approved)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *adminRepository) CountSwapsByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.SwapRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *adminRepository) FeedbackStats(ctx context.Context) (int64, float64, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&entity.Feedback{}).
		Select("COUNT(*) AS count, AVG(rating) AS average").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Average == nil {
		return row.Count, 0, nil
	}
	return row.Count, *row.Average, nil
}

func (r *adminRepository) CreateMessage(ctx context.Context, msg *entity.PlatformMessage, action *entity.AdminAction) error {
	return r.withAudit(ctx, action, func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		action.TargetID = &msg.ID
		return nil
	})
}

func (r *adminRepository) ListMessages(ctx context.Context, limit int) ([]entity.PlatformMessage, error) {
	var messages []entity.PlatformMessage
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *adminRepository) RecordAction(ctx context.Context, action *entity.AdminAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *adminRepository) ListActions(ctx context.Context, limit int) ([]entity.AdminAction, error) {
	var actions []entity.AdminAction
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(limit).
		Find(&actions).Error
	return actions, err
}
