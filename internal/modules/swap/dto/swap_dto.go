package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

type CreateSwapRequest struct {
	RecipientID      string `json:"recipient_id" binding:"required,uuid"`
	RequesterSkillID string `json:"requester_skill_id" binding:"omitempty,uuid"`
	RecipientSkillID string `json:"recipient_skill_id" binding:"omitempty,uuid"`
	Message          string `json:"message" binding:"max=1000"`
}

// CounterpartResponse is the other party of a swap as shown in lists.
type CounterpartResponse struct {
	ID            uuid.UUID `json:"id"`
	ClerkID       string    `json:"clerk_id"`
	FullName      string    `json:"full_name"`
	AvatarURL     *string   `json:"avatar_url"`
	Rating        float64   `json:"rating"`
	SkillsOffered []string  `json:"skills_offered"`
}

type SwapResponse struct {
	ID               uuid.UUID     `json:"id"`
	RequesterID      uuid.UUID     `json:"requester_id"`
	RecipientID      uuid.UUID     `json:"recipient_id"`
	RequesterSkillID *uuid.UUID    `json:"requester_skill_id"`
	RecipientSkillID *uuid.UUID    `json:"recipient_skill_id"`
	RequesterSkill   *entity.Skill `json:"requester_skill,omitempty"`
	RecipientSkill   *entity.Skill `json:"recipient_skill,omitempty"`
	Message          string        `json:"message"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	ExpiresAt        *time.Time    `json:"expires_at"`

	Requester *CounterpartResponse `json:"requester,omitempty"`
	Recipient *CounterpartResponse `json:"recipient,omitempty"`
}

// CompletedSwapResponse carries the partner relative to the viewer.
// CompletedAt is the swap's last update.
type CompletedSwapResponse struct {
	SwapResponse
	Partner     CounterpartResponse `json:"partner"`
	CompletedAt time.Time           `json:"completed_at"`
}

func NewSwapResponse(swap *entity.SwapRequest) SwapResponse {
	return SwapResponse{
		ID:               swap.ID,
		RequesterID:      swap.RequesterID,
		RecipientID:      swap.RecipientID,
		RequesterSkillID: swap.RequesterSkillID,
		RecipientSkillID: swap.RecipientSkillID,
		RequesterSkill:   swap.RequesterSkill,
		RecipientSkill:   swap.RecipientSkill,
		Message:          swap.Message,
		Status:           swap.Status,
		CreatedAt:        swap.CreatedAt,
		UpdatedAt:        swap.UpdatedAt,
		ExpiresAt:        swap.ExpiresAt,
	}
}

func NewCounterpartResponse(p *entity.Profile) CounterpartResponse {
	names := make([]string, 0, len(p.SkillsOffered))
	for _, o := range p.SkillsOffered {
		if o.Skill.Name != "" {
			names = append(names, o.Skill.Name)
		}
	}
	return CounterpartResponse{
		ID:            p.ID,
		ClerkID:       p.ClerkID,
		FullName:      p.FullName,
		AvatarURL:     p.AvatarURL,
		Rating:        p.Rating,
		SkillsOffered: names,
	}
}
