package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SwapRepository interface {
	Create(ctx context.Context, swap *entity.SwapRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SwapRequest, error)
	FindIncoming(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error)
	FindOutgoing(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error)
	FindCompleted(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]entity.SwapRequest, error)
	UpdateStatus(ctx context.Context, swap *entity.SwapRequest, to string) (bool, error)
	DeletePending(ctx context.Context, id, requesterID uuid.UUID) (int64, error)
}

type swapRepository struct {
	db *gorm.DB
}

func NewSwapRepository(db *gorm.DB) SwapRepository {
	return &swapRepository{db: db}
}

func withSkills(db *gorm.DB) *gorm.DB {
	return db.Preload("RequesterSkill").Preload("RecipientSkill")
}

func withParty(db *gorm.DB, party string) *gorm.DB {
	return db.
		Preload(party).
		Preload(party+".SkillsOffered", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload(party + ".SkillsOffered.Skill")
}

func (r *swapRepository) Create(ctx context.Context, swap *entity.SwapRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(swap).Error
}

func (r *swapRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SwapRequest, error) {
	var swap entity.SwapRequest
	if err := withSkills(r.db.WithContext(ctx)).First(&swap, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &swap, nil
}

func (r *swapRepository) FindIncoming(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error) {
	var swaps []entity.SwapRequest
	err := withParty(withSkills(r.db.WithContext(ctx)), "Requester").
		Where("recipient_id = ?", profileID).
		Order("created_at DESC").
		Find(&swaps).Error
	return swaps, err
}

func (r *swapRepository) FindOutgoing(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error) {
	var swaps []entity.SwapRequest
	err := withParty(withSkills(r.db.WithContext(ctx)), "Recipient").
		Where("requester_id = ?", profileID).
		Order("created_at DESC").
		Find(&swaps).Error
	return swaps, err
}

func (r *swapRepository) FindCompleted(ctx context.Context, profileID uuid.UUID) ([]entity.SwapRequest, error) {
	var swaps []entity.SwapRequest
	query := withSkills(r.db.WithContext(ctx))
	query = withParty(query, "Requester")
	query = withParty(query, "Recipient")
	err := query.
		Where("status = ?", entity.SwapStatusCompleted).
		Where("requester_id = ? OR recipient_id = ?", profileID, profileID).
		Order("updated_at DESC").
		Find(&swaps).Error
	return swaps, err
}

func (r *swapRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]entity.SwapRequest, error) {
	var swaps []entity.SwapRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", entity.SwapStatusPending, now).
		Limit(500).
		Find(&swaps).Error
	return swaps, err
}

// UpdateStatus moves swap from its current status to `to` only if the stored
// row still has that status. Completion also bumps total_swaps on both
// profiles in the same transaction. It reports whether the row was updated.
func (r *swapRepository) UpdateStatus(ctx context.Context, swap *entity.SwapRequest, to string) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.SwapRequest{}).
			Where("id = ? AND status = ?", swap.ID, swap.Status).
			Updates(map[string]any{
				"status":     to,
				"updated_at": tx.NowFunc(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		updated = true

		if to != entity.SwapStatusCompleted {
			return nil
		}
		return tx.Model(&entity.Profile{}).
			Where("id IN ?", []uuid.UUID{swap.RequesterID, swap.RecipientID}).
			UpdateColumn("total_swaps", gorm.Expr("total_swaps + ?", 1)).Error
	})
	return updated, err
}

func (r *swapRepository) DeletePending(ctx context.Context, id, requesterID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND requester_id = ? AND status = ?", id, requesterID, entity.SwapStatusPending).
		Delete(&entity.SwapRequest{})
	return res.RowsAffected, res.Error
}
