package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionUserActivate   = "user_activate"
	ActionUserSuspend    = "user_suspend"
	ActionUserBan        = "user_ban"
	ActionUserDelete     = "user_delete"
	ActionSkillApprove   = "skill_approve"
	ActionSkillReject    = "skill_reject"
	ActionSkillAdd       = "skill_add"
	ActionGlobalMessage  = "global_message"
	ActionReportDownload = "report_download"
)

// AdminAction is the audit trail of administrative mutations. AdminID is the
// identity-provider id of the acting admin.
type AdminAction struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID    string         `gorm:"size:191;not null;index" json:"admin_id"`
	ActionType string         `gorm:"size:50;not null;index" json:"action_type"`
	TargetID   *uuid.UUID     `gorm:"type:uuid" json:"target_id"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AdminAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	return nil
}

// PlatformMessage is a global announcement sent by an admin.
type PlatformMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID   string    `gorm:"size:191;not null" json:"admin_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (m *PlatformMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	return nil
}
