package skill

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	search "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	skillDto "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/dto"
	skillRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/repository"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
	"gorm.io/gorm"
)

type SkillService interface {
	ListApproved(ctx context.Context) ([]entity.Skill, error)
	ListCategories(ctx context.Context) ([]string, error)
	GetOrCreate(ctx context.Context, name, category string) (*entity.Skill, error)

	ListOffered(ctx context.Context, profileID uuid.UUID) ([]entity.UserSkillOffered, error)
	AddOffered(ctx context.Context, profileID uuid.UUID, req skillDto.AddOfferedSkillRequest) (*entity.UserSkillOffered, error)
	RemoveOffered(ctx context.Context, profileID, id uuid.UUID) error

	ListWanted(ctx context.Context, profileID uuid.UUID) ([]entity.UserSkillWanted, error)
	AddWanted(ctx context.Context, profileID uuid.UUID, req skillDto.AddWantedSkillRequest) (*entity.UserSkillWanted, error)
	RemoveWanted(ctx context.Context, profileID, id uuid.UUID) error
}

type skillService struct {
	repo      skillRepo.SkillRepository
	indexer   *search.Indexer
	publisher realtime.Publisher
}

func NewSkillService(repo skillRepo.SkillRepository, indexer *search.Indexer, publisher realtime.Publisher) SkillService {
	return &skillService{
		repo:      repo,
		indexer:   indexer,
		publisher: publisher,
	}
}

func (s *skillService) ListApproved(ctx context.Context) ([]entity.Skill, error) {
	return s.repo.FindApproved(ctx)
}

func (s *skillService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ApprovedCategories(ctx)
}

// GetOrCreate returns the skill with the given name, creating an unapproved
// one when none exists. Names compare case-insensitively.
func (s *skillService) GetOrCreate(ctx context.Context, name, category string) (*entity.Skill, error) {
	name = sanitize.Text(name)
	if name == "" {
		return nil, fmt.Errorf("skill name is required: %w", apperror.ErrInvalidInput)
	}

	skill, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	skill = &entity.Skill{
		Name:       name,
		Category:   sanitize.Text(category),
		IsApproved: false,
	}
	if err := s.repo.Create(ctx, skill); err != nil {
		// Lost a race against another insert of the same name.
		existing, findErr := s.repo.FindByName(ctx, name)
		if findErr != nil {
			return nil, fmt.Errorf("failed to create skill: %w", err)
		}
		return existing, nil
	}

	log.Printf("Created unapproved skill %q", skill.Name)
	return skill, nil
}

func (s *skillService) resolveSkill(ctx context.Context, skillID, skillName, category string) (*entity.Skill, error) {
	if skillID != "" {
		id, err := uuid.Parse(skillID)
		if err != nil {
			return nil, fmt.Errorf("invalid skill_id: %w", apperror.ErrBadRequest)
		}
		skill, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("skill: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		return skill, nil
	}
	return s.GetOrCreate(ctx, skillName, category)
}

func (s *skillService) ListOffered(ctx context.Context, profileID uuid.UUID) ([]entity.UserSkillOffered, error) {
	return s.repo.FindOffered(ctx, profileID)
}

func (s *skillService) AddOffered(ctx context.Context, profileID uuid.UUID, req skillDto.AddOfferedSkillRequest) (*entity.UserSkillOffered, error) {
	level := req.ProficiencyLevel
	if level == "" {
		level = entity.ProficiencyIntermediate
	}
	if !entity.IsValidProficiency(level) {
		return nil, fmt.Errorf("invalid proficiency level %q: %w", level, apperror.ErrInvalidInput)
	}

	skill, err := s.resolveSkill(ctx, req.SkillID, req.SkillName, req.Category)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.HasOffered(ctx, profileID, skill.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s is already offered: %w", skill.Name, apperror.ErrConflict)
	}

	offered := &entity.UserSkillOffered{
		UserID:           profileID,
		SkillID:          skill.ID,
		ProficiencyLevel: level,
		YearsExperience:  req.YearsExperience,
	}
	if err := s.repo.CreateOffered(ctx, offered); err != nil {
		return nil, fmt.Errorf("failed to add offered skill: %w", err)
	}
	offered.Skill = *skill

	s.profileChanged(ctx, profileID)
	return offered, nil
}

func (s *skillService) RemoveOffered(ctx context.Context, profileID, id uuid.UUID) error {
	n, err := s.repo.DeleteOffered(ctx, profileID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("offered skill: %w", apperror.ErrNotFound)
	}
	s.profileChanged(ctx, profileID)
	return nil
}

func (s *skillService) ListWanted(ctx context.Context, profileID uuid.UUID) ([]entity.UserSkillWanted, error) {
	return s.repo.FindWanted(ctx, profileID)
}

func (s *skillService) AddWanted(ctx context.Context, profileID uuid.UUID, req skillDto.AddWantedSkillRequest) (*entity.UserSkillWanted, error) {
	urgency := req.Urgency
	if urgency == "" {
		urgency = entity.UrgencyMedium
	}
	if !entity.IsValidUrgency(urgency) {
		return nil, fmt.Errorf("invalid urgency %q: %w", urgency, apperror.ErrInvalidInput)
	}

	skill, err := s.resolveSkill(ctx, req.SkillID, req.SkillName, req.Category)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.HasWanted(ctx, profileID, skill.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s is already wanted: %w", skill.Name, apperror.ErrConflict)
	}

	wanted := &entity.UserSkillWanted{
		UserID:  profileID,
		SkillID: skill.ID,
		Urgency: urgency,
	}
	if err := s.repo.CreateWanted(ctx, wanted); err != nil {
		return nil, fmt.Errorf("failed to add wanted skill: %w", err)
	}
	wanted.Skill = *skill

	s.profileChanged(ctx, profileID)
	return wanted, nil
}

func (s *skillService) RemoveWanted(ctx context.Context, profileID, id uuid.UUID) error {
	n, err := s.repo.DeleteWanted(ctx, profileID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("wanted skill: %w", apperror.ErrNotFound)
	}
	s.profileChanged(ctx, profileID)
	return nil
}

func (s *skillService) profileChanged(ctx context.Context, profileID uuid.UUID) {
	s.indexer.Refresh(ctx, profileID)
	s.publisher.PublishProfile(ctx, realtime.EventUpdate, &entity.Profile{ID: profileID})
}
