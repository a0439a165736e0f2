package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"

	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"

	DefaultSkillCategory = "Other"
)

type Skill struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	NameKey     string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Category    string    `gorm:"size:100;not null;index" json:"category"`
	Description *string   `gorm:"type:text" json:"description"`
	IsApproved  bool      `gorm:"not null;index" json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
}

// SkillNameKey is the case-insensitive identity of a skill name.
func SkillNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	return nil
}

func (s *Skill) BeforeSave(tx *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.NameKey = SkillNameKey(s.Name)
	if s.Category == "" {
		s.Category = DefaultSkillCategory
	}
	return nil
}

type UserSkillOffered struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offered_user_skill" json:"user_id"`
	SkillID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offered_user_skill;index" json:"skill_id"`
	ProficiencyLevel string    `gorm:"size:20;not null" json:"proficiency_level"`
	YearsExperience  *int      `json:"years_experience"`
	CreatedAt        time.Time `json:"created_at"`

	Skill Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"skills"`
}

func (UserSkillOffered) TableName() string {
	return "user_skills_offered"
}

func (u *UserSkillOffered) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}

type UserSkillWanted struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wanted_user_skill" json:"user_id"`
	SkillID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wanted_user_skill;index" json:"skill_id"`
	Urgency   string    `gorm:"size:20;not null" json:"urgency"`
	CreatedAt time.Time `json:"created_at"`

	Skill Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"skills"`
}

func (UserSkillWanted) TableName() string {
	return "user_skills_wanted"
}

func (u *UserSkillWanted) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}

func IsValidProficiency(s string) bool {
	switch s {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

func IsValidUrgency(s string) bool {
	switch s {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}
