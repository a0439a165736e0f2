package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingFunc folds a reviewee's ratings into the stored profile rating.
type RatingFunc func(ratings []int) float64

type FeedbackRepository interface {
	Exists(ctx context.Context, swapID, reviewerID uuid.UUID) (bool, error)
	CreateAndRate(ctx context.Context, feedback *entity.Feedback, rate RatingFunc) error
	FindReceived(ctx context.Context, revieweeID uuid.UUID) ([]entity.Feedback, error)
	Ratings(ctx context.Context, revieweeID uuid.UUID, publicOnly bool) ([]int, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Exists(ctx context.Context, swapID, reviewerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Feedback{}).
		Where("swap_session_id = ? AND reviewer_id = ?", swapID, reviewerID).
		Count(&count).Error
	return count > 0, err
}

// CreateAndRate inserts the feedback and rewrites the reviewee's rating from
// all feedback they received, in one transaction.
func (r *feedbackRepository) CreateAndRate(ctx context.Context, feedback *entity.Feedback, rate RatingFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(feedback).Error; err != nil {
			return err
		}

		var ratings []int
		if err := tx.Model(&entity.Feedback{}).
			Where("reviewee_id = ?", feedback.RevieweeID).
			Pluck("rating", &ratings).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Profile{}).
			Where("id = ?", feedback.RevieweeID).
			UpdateColumn("rating", rate(ratings)).Error
	})
}

func (r *feedbackRepository) FindReceived(ctx context.Context, revieweeID uuid.UUID) ([]entity.Feedback, error) {
	var feedback []entity.Feedback
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("reviewee_id = ?", revieweeID).
		Order("created_at DESC").
		Find(&feedback).Error
	return feedback, err
}

func (r *feedbackRepository) Ratings(ctx context.Context, revieweeID uuid.UUID, publicOnly bool) ([]int, error) {
	var ratings []int
	query := r.db.WithContext(ctx).Model(&entity.Feedback{}).Where("reviewee_id = ?", revieweeID)
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	err := query.Pluck("rating", &ratings).Error
	return ratings, err
}
