package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

type CreateFeedbackRequest struct {
	SwapID   string  `json:"swap_id" binding:"required,uuid"`
	Rating   int     `json:"rating" binding:"required,min=1,max=5"`
	Comment  *string `json:"comment" binding:"omitempty,max=2000"`
	IsPublic *bool   `json:"is_public"`
}

type ReviewerResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
}

type FeedbackResponse struct {
	ID            uuid.UUID         `json:"id"`
	SwapSessionID uuid.UUID         `json:"swap_session_id"`
	ReviewerID    uuid.UUID         `json:"reviewer_id"`
	RevieweeID    uuid.UUID         `json:"reviewee_id"`
	Rating        int               `json:"rating"`
	Comment       *string           `json:"comment"`
	IsPublic      bool              `json:"is_public"`
	CreatedAt     time.Time         `json:"created_at"`
	Reviewer      *ReviewerResponse `json:"reviewer,omitempty"`
}

func NewFeedbackResponse(f *entity.Feedback) FeedbackResponse {
	resp := FeedbackResponse{
		ID:            f.ID,
		SwapSessionID: f.SwapSessionID,
		ReviewerID:    f.ReviewerID,
		RevieweeID:    f.RevieweeID,
		Rating:        f.Rating,
		Comment:       f.Comment,
		IsPublic:      f.IsPublic,
		CreatedAt:     f.CreatedAt,
	}
	if f.Reviewer.ID != uuid.Nil {
		resp.Reviewer = &ReviewerResponse{
			ID:        f.Reviewer.ID,
			FullName:  f.Reviewer.FullName,
			AvatarURL: f.Reviewer.AvatarURL,
		}
	}
	return resp
}
