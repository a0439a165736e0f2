package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SwapSessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_swap_reviewer" json:"swap_session_id"`
	ReviewerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_swap_reviewer" json:"reviewer_id"`
	RevieweeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewee_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       *string   `gorm:"type:text" json:"comment"`
	IsPublic      bool      `gorm:"not null" json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`

	SwapSession SwapRequest `gorm:"foreignKey:SwapSessionID;constraint:OnDelete:CASCADE" json:"-"`
	Reviewer    Profile     `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"-"`
	Reviewee    Profile     `gorm:"foreignKey:RevieweeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		f.ID = id
	}
	return nil
}
