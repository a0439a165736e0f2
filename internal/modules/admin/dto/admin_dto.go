package dto

import "github.com/raunak23427/mutual-skill-sync/internal/entity"

const (
	ModerateApprove = "approve"
	ModerateReject  = "reject"

	ReportUsers    = "users"
	ReportSwaps    = "swaps"
	ReportFeedback = "feedback"
)

type UserFilter struct {
	Search string `form:"search" binding:"max=100"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive banned"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive banned"`
}

type CreateSkillRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Category    string  `json:"category" binding:"max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type ModerateSkillRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

type CreateMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type ReportRequest struct {
	Type string `uri:"type" binding:"required,oneof=users swaps feedback"`
}

type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

type PlatformStats struct {
	TotalUsers     int64   `json:"total_users"`
	ActiveUsers    int64   `json:"active_users"`
	BannedUsers    int64   `json:"banned_users"`
	TotalSkills    int64   `json:"total_skills"`
	PendingSkills  int64   `json:"pending_skills"`
	TotalSwaps     int64   `json:"total_swaps"`
	CompletedSwaps int64   `json:"completed_swaps"`
	TotalFeedback  int64   `json:"total_feedback"`
	AverageRating  float64 `json:"average_rating"`
}

type SwapStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
}

// AdminSwapResponse is a swap request with both parties' display names.
type AdminSwapResponse struct {
	entity.SwapRequest
	RequesterName string `json:"requester_name"`
	RecipientName string `json:"recipient_name"`
}
