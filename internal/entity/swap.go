package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"

	DefaultSwapMessage = "Would love to exchange skills with you!"
)

type SwapRequest struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	RecipientID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	RequesterSkillID *uuid.UUID `gorm:"type:uuid" json:"requester_skill_id"`
	RecipientSkillID *uuid.UUID `gorm:"type:uuid" json:"recipient_skill_id"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	Status           string     `gorm:"size:20;not null;index" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ExpiresAt        *time.Time `gorm:"index" json:"expires_at"`

	Requester      Profile `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE" json:"-"`
	Recipient      Profile `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	RequesterSkill *Skill  `gorm:"foreignKey:RequesterSkillID;constraint:OnDelete:SET NULL" json:"requester_skill,omitempty"`
	RecipientSkill *Skill  `gorm:"foreignKey:RecipientSkillID;constraint:OnDelete:SET NULL" json:"recipient_skill,omitempty"`
}

func (s *SwapRequest) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	return nil
}

// IsParty reports whether profileID is the requester or the recipient.
func (s *SwapRequest) IsParty(profileID uuid.UUID) bool {
	return s.RequesterID == profileID || s.RecipientID == profileID
}

// Counterpart returns the other party relative to profileID.
func (s *SwapRequest) Counterpart(profileID uuid.UUID) uuid.UUID {
	if s.RequesterID == profileID {
		return s.RecipientID
	}
	return s.RequesterID
}

func (s *SwapRequest) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
