package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
	ProfileStatusBanned   = "banned"

	DefaultAvailability = "weekends"
)

// Profile is the marketplace identity of a user, keyed to the identity
// provider by ClerkID.
type Profile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClerkID      string    `gorm:"size:191;uniqueIndex;not null" json:"clerk_id"`
	Email        string    `gorm:"size:255" json:"email"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url"`
	Location     *string   `gorm:"size:255" json:"location"`
	Availability string    `gorm:"size:50;not null" json:"availability"`
	IsPublic     bool      `gorm:"not null;index" json:"is_public"`
	Bio          *string   `gorm:"type:text" json:"bio"`
	Rating       float64   `gorm:"not null" json:"rating"`
	TotalSwaps   int       `gorm:"not null" json:"total_swaps"`
	Status       string    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	SkillsOffered []UserSkillOffered `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user_skills_offered,omitempty"`
	SkillsWanted  []UserSkillWanted  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user_skills_wanted,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		p.ID = id
	}
	return nil
}

func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

func (p *Profile) IsBanned() bool {
	return p.Status == ProfileStatusBanned
}

// IsVisible reports whether other users may see the profile.
func (p *Profile) IsVisible() bool {
	return p.IsPublic && p.IsActive()
}

func IsValidProfileStatus(s string) bool {
	switch s {
	case ProfileStatusActive, ProfileStatusInactive, ProfileStatusBanned:
		return true
	}
	return false
}
