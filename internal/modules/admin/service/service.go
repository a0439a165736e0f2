package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	adminDto "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/dto"
	adminRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/repository"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	search "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/csvexport"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListLimit = 100

type AdminService interface {
	ListUsers(ctx context.Context, filter adminDto.UserFilter) ([]entity.Profile, error)
	UpdateUserStatus(ctx context.Context, admin *identity.Identity, userID uuid.UUID, status string) (*entity.Profile, error)
	DeleteUser(ctx context.Context, admin *identity.Identity, userID uuid.UUID) error

	ListSkills(ctx context.Context) ([]entity.Skill, error)
	AddSkill(ctx context.Context, admin *identity.Identity, req adminDto.CreateSkillRequest) (*entity.Skill, error)
	ModerateSkill(ctx context.Context, admin *identity.Identity, skillID uuid.UUID, action string) error

	ListSwaps(ctx context.Context) ([]adminDto.AdminSwapResponse, error)
	PlatformStats(ctx context.Context) (*adminDto.PlatformStats, error)
	SwapStats(ctx context.Context) (*adminDto.SwapStats, error)

	SendMessage(ctx context.Context, admin *identity.Identity, message string) (*entity.PlatformMessage, error)
	ListMessages(ctx context.Context, limit int) ([]entity.PlatformMessage, error)
	ListActions(ctx context.Context, limit int) ([]entity.AdminAction, error)

	GenerateReport(ctx context.Context, admin *identity.Identity, reportType string) (*csvexport.Report, error)
}

type adminService struct {
	repo      adminRepo.AdminRepository
	indexer   *search.Indexer
	publisher realtime.Publisher
}

func NewAdminService(repo adminRepo.AdminRepository, indexer *search.Indexer, publisher realtime.Publisher) AdminService {
	return &adminService{
		repo:      repo,
		indexer:   indexer,
		publisher: publisher,
	}
}

func newAction(admin *identity.Identity, actionType string, target *uuid.UUID, details map[string]any) *entity.AdminAction {
	action := &entity.AdminAction{
		AdminID:    admin.ID,
		ActionType: actionType,
		TargetID:   target,
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			action.Details = datatypes.JSON(raw)
		}
	}
	return action
}

func recorded(action *entity.AdminAction) {
	metrics.AdminActions.WithLabelValues(action.ActionType).Inc()
	log.Printf("admin: %s by %s", action.ActionType, action.AdminID)
}

func (s *adminService) ListUsers(ctx context.Context, filter adminDto.UserFilter) ([]entity.Profile, error) {
	return s.repo.ListUsers(ctx, sanitize.Text(filter.Search), filter.Status)
}

func (s *adminService) findUser(ctx context.Context, admin *identity.Identity, userID uuid.UUID) (*entity.Profile, error) {
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	if user.ClerkID == admin.ID {
		return nil, fmt.Errorf("admins cannot change their own account: %w", apperror.ErrForbidden)
	}
	return user, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, admin *identity.Identity, userID uuid.UUID, status string) (*entity.Profile, error) {
	if !entity.IsValidProfileStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, apperror.ErrInvalidInput)
	}

	user, err := s.findUser(ctx, admin, userID)
	if err != nil {
		return nil, err
	}

	actionType := entity.ActionUserActivate
	switch status {
	case entity.ProfileStatusInactive:
		actionType = entity.ActionUserSuspend
	case entity.ProfileStatusBanned:
		actionType = entity.ActionUserBan
	}

	action := newAction(admin, actionType, &user.ID, map[string]any{
		"from": user.Status,
		"to":   status,
	})
	if err := s.repo.UpdateUserStatus(ctx, user.ID, status, action); err != nil {
		return nil, translate(err, "user")
	}
	recorded(action)

	user.Status = status
	s.indexer.Refresh(ctx, user.ID)
	s.publisher.PublishProfile(ctx, realtime.EventUpdate, user)
	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, admin *identity.Identity, userID uuid.UUID) error {
	user, err := s.findUser(ctx, admin, userID)
	if err != nil {
		return err
	}

	action := newAction(admin, entity.ActionUserDelete, &user.ID, map[string]any{
		"email":     user.Email,
		"full_name": user.FullName,
	})
	if err := s.repo.DeleteUser(ctx, user.ID, action); err != nil {
		return translate(err, "user")
	}
	recorded(action)

	s.indexer.Remove(ctx, user.ID)
	s.publisher.PublishProfile(ctx, realtime.EventDelete, user)
	return nil
}

func (s *adminService) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	return s.repo.ListSkills(ctx)
}

// AddSkill creates an approved skill. Adding a name that exists unapproved
// approves it instead.
func (s *adminService) AddSkill(ctx context.Context, admin *identity.Identity, req adminDto.CreateSkillRequest) (*entity.Skill, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, fmt.Errorf("skill name is required: %w", apperror.ErrInvalidInput)
	}

	existing, err := s.repo.FindSkillByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.IsApproved {
			return nil, fmt.Errorf("skill %q already exists: %w", existing.Name, apperror.ErrConflict)
		}
		if err := s.ModerateSkill(ctx, admin, existing.ID, adminDto.ModerateApprove); err != nil {
			return nil, err
		}
		existing.IsApproved = true
		return existing, nil
	}

	skill := &entity.Skill{
		Name:        name,
		Category:    sanitize.Text(req.Category),
		Description: sanitize.Optional(req.Description),
		IsApproved:  true,
	}
	action := newAction(admin, entity.ActionSkillAdd, nil, map[string]any{"name": name})
	if err := s.repo.CreateSkill(ctx, skill, action); err != nil {
		if _, findErr := s.repo.FindSkillByName(ctx, name); findErr == nil {
			return nil, fmt.Errorf("skill %q already exists: %w", name, apperror.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}
	recorded(action)
	return skill, nil
}

// ModerateSkill approves a skill or rejects it. Rejecting deletes the skill.
func (s *adminService) ModerateSkill(ctx context.Context, admin *identity.Identity, skillID uuid.UUID, moderation string) error {
	skill, err := s.repo.FindSkill(ctx, skillID)
	if err != nil {
		return translate(err, "skill")
	}

	details := map[string]any{"name": skill.Name}
	var action *entity.AdminAction
	switch moderation {
	case adminDto.ModerateApprove:
		action = newAction(admin, entity.ActionSkillApprove, &skill.ID, details)
		err = s.repo.ApproveSkill(ctx, skill.ID, action)
	case adminDto.ModerateReject:
		action = newAction(admin, entity.ActionSkillReject, &skill.ID, details)
		err = s.repo.DeleteSkill(ctx, skill.ID, action)
	default:
		return fmt.Errorf("unknown moderation %q: %w", moderation, apperror.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to moderate skill: %w", err)
	}
	recorded(action)
	return nil
}

func (s *adminService) ListSwaps(ctx context.Context) ([]adminDto.AdminSwapResponse, error) {
	swaps, err := s.repo.ListSwaps(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]adminDto.AdminSwapResponse, 0, len(swaps))
	for _, swap := range swaps {
		resp = append(resp, adminDto.AdminSwapResponse{
			SwapRequest:   swap,
			RequesterName: swap.Requester.FullName,
			RecipientName: swap.Recipient.FullName,
		})
	}
	return resp, nil
}

func (s *adminService) PlatformStats(ctx context.Context) (*adminDto.PlatformStats, error) {
	var stats adminDto.PlatformStats
	var err error

	if stats.TotalUsers, err = s.repo.CountProfiles(ctx, ""); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.repo.CountProfiles(ctx, entity.ProfileStatusActive); err != nil {
		return nil, err
	}
	if stats.BannedUsers, err = s.repo.CountProfiles(ctx, entity.ProfileStatusBanned); err != nil {
		return nil, err
	}
	if stats.TotalSkills, err = s.repo.CountSkills(ctx, nil); err != nil {
		return nil, err
	}
	unapproved := false
	if stats.PendingSkills, err = s.repo.CountSkills(ctx, &unapproved); err != nil {
		return nil, err
	}

	swaps, err := s.SwapStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalSwaps = swaps.Total
	stats.CompletedSwaps = swaps.Completed

	count, avg, err := s.repo.FeedbackStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalFeedback = count
	stats.AverageRating = math.Round(avg*100) / 100
	return &stats, nil
}

func (s *adminService) SwapStats(ctx context.Context) (*adminDto.SwapStats, error) {
	counts, err := s.repo.CountSwapsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &adminDto.SwapStats{
		Pending:   counts[entity.SwapStatusPending],
		Accepted:  counts[entity.SwapStatusAccepted],
		Rejected:  counts[entity.SwapStatusRejected],
		Completed: counts[entity.SwapStatusCompleted],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *adminService) SendMessage(ctx context.Context, admin *identity.Identity, message string) (*entity.PlatformMessage, error) {
	message = sanitize.Text(message)
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", apperror.ErrInvalidInput)
	}

	msg := &entity.PlatformMessage{
		AdminID: admin.ID,
		Message: message,
	}
	action := newAction(admin, entity.ActionGlobalMessage, nil, map[string]any{"message": message})
	if err := s.repo.CreateMessage(ctx, msg, action); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	recorded(action)

	s.publisher.PublishMessage(ctx, msg)
	return msg, nil
}

func (s *adminService) ListMessages(ctx context.Context, limit int) ([]entity.PlatformMessage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListMessages(ctx, limit)
}

func (s *adminService) ListActions(ctx context.Context, limit int) ([]entity.AdminAction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListActions(ctx, limit)
}

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}
