package search

import (
	"strings"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

// ProfileFilter narrows a browse listing. Zero values disable a criterion.
type ProfileFilter struct {
	Query     string
	Category  string
	SkillID   uuid.UUID
	ExcludeID uuid.UUID
}

// FilterProfiles keeps the order of profiles and drops every entry that does
// not satisfy all criteria:
//   - Query matches case-insensitively as a substring of the full name, the
//     location or any offered or wanted skill name.
//   - Category equals the category of at least one offered skill.
//   - SkillID equals the skill of at least one offered entry.
func FilterProfiles(profiles []entity.Profile, f ProfileFilter) []entity.Profile {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	out := make([]entity.Profile, 0, len(profiles))
	for _, p := range profiles {
		if f.ExcludeID != uuid.Nil && p.ID == f.ExcludeID {
			continue
		}
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		if category != "" && !offersCategory(&p, category) {
			continue
		}
		if f.SkillID != uuid.Nil && !offersSkill(&p, f.SkillID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p *entity.Profile, query string) bool {
	if strings.Contains(strings.ToLower(p.FullName), query) {
		return true
	}
	if p.Location != nil && strings.Contains(strings.ToLower(*p.Location), query) {
		return true
	}
	for _, o := range p.SkillsOffered {
		if strings.Contains(strings.ToLower(o.Skill.Name), query) {
			return true
		}
	}
	for _, w := range p.SkillsWanted {
		if strings.Contains(strings.ToLower(w.Skill.Name), query) {
			return true
		}
	}
	return false
}

func offersCategory(p *entity.Profile, category string) bool {
	for _, o := range p.SkillsOffered {
		if o.Skill.Category == category {
			return true
		}
	}
	return false
}

func offersSkill(p *entity.Profile, skillID uuid.UUID) bool {
	for _, o := range p.SkillsOffered {
		if o.SkillID == skillID {
			return true
		}
	}
	return false
}
