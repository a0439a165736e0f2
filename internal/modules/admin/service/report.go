package admin

import (
	"context"
	"fmt"

	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	adminDto "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/csvexport"
)

var (
	userColumns     = []string{"id", "clerk_id", "email", "full_name", "location", "availability", "is_public", "rating", "total_swaps", "status", "created_at"}
	swapColumns     = []string{"id", "requester", "recipient", "requester_skill", "recipient_skill", "message", "status", "created_at", "updated_at", "expires_at"}
	feedbackColumns = []string{"id", "swap_session_id", "reviewer_id", "reviewee_id", "rating", "comment", "is_public", "created_at"}
)

// GenerateReport builds one of the CSV reports and records the download.
// A nil admin skips the audit row (command line exports).
func (s *adminService) GenerateReport(ctx context.Context, admin *identity.Identity, reportType string) (*csvexport.Report, error) {
	var (
		report *csvexport.Report
		err    error
	)
	switch reportType {
	case adminDto.ReportUsers:
		report, err = s.usersReport(ctx)
	case adminDto.ReportSwaps:
		report, err = s.swapsReport(ctx)
	case adminDto.ReportFeedback:
		report, err = s.feedbackReport(ctx)
	default:
		return nil, fmt.Errorf("unknown report %q: %w", reportType, apperror.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	if admin != nil {
		action := newAction(admin, entity.ActionReportDownload, nil, map[string]any{
			"report": reportType,
			"rows":   len(report.Rows),
		})
		if err := s.repo.RecordAction(ctx, action); err != nil {
			return nil, fmt.Errorf("failed to record report download: %w", err)
		}
		recorded(action)
	}
	return report, nil
}

func (s *adminService) usersReport(ctx context.Context) (*csvexport.Report, error) {
	users, err := s.repo.ListUsers(ctx, "", "")
	if err != nil {
		return nil, err
	}

	rows := make([]csvexport.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, csvexport.Row{
			"id":           u.ID,
			"clerk_id":     u.ClerkID,
			"email":        u.Email,
			"full_name":    u.FullName,
			"location":     u.Location,
			"availability": u.Availability,
			"is_public":    u.IsPublic,
			"rating":       u.Rating,
			"total_swaps":  u.TotalSwaps,
			"status":       u.Status,
			"created_at":   u.CreatedAt,
		})
	}
	return &csvexport.Report{Name: adminDto.ReportUsers, Columns: userColumns, Rows: rows}, nil
}

func (s *adminService) swapsReport(ctx context.Context) (*csvexport.Report, error) {
	swaps, err := s.repo.ListSwaps(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]csvexport.Row, 0, len(swaps))
	for _, sw := range swaps {
		rows = append(rows, csvexport.Row{
			"id":              sw.ID,
			"requester":       sw.Requester.FullName,
			"recipient":       sw.Recipient.FullName,
			"requester_skill": skillName(sw.RequesterSkill),
			"recipient_skill": skillName(sw.RecipientSkill),
			"message":         sw.Message,
			"status":          sw.Status,
			"created_at":      sw.CreatedAt,
			"updated_at":      sw.UpdatedAt,
			"expires_at":      sw.ExpiresAt,
		})
	}
	return &csvexport.Report{Name: adminDto.ReportSwaps, Columns: swapColumns, Rows: rows}, nil
}

func (s *adminService) feedbackReport(ctx context.Context) (*csvexport.Report, error) {
	feedback, err := s.repo.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]csvexport.Row, 0, len(feedback))
	for _, f := range feedback {
		rows = append(rows, csvexport.Row{
			"id":              f.ID,
			"swap_session_id": f.SwapSessionID,
			"reviewer_id":     f.ReviewerID,
			"reviewee_id":     f.RevieweeID,
			"rating":          f.Rating,
			"comment":         f.Comment,
			"is_public":       f.IsPublic,
			"created_at":      f.CreatedAt,
		})
	}
	return &csvexport.Report{Name: adminDto.ReportFeedback, Columns: feedbackColumns, Rows: rows}, nil
}

func skillName(skill *entity.Skill) string {
	if skill == nil {
		return ""
	}
	return skill.Name
}
