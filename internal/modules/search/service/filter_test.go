package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

func profileWith(name, location string, offered []entity.Skill, wanted []entity.Skill) entity.Profile {
	p := entity.Profile{ID: uuid.New(), FullName: name}
	if location != "" {
		p.Location = &location
	}
	for _, s := range offered {
		p.SkillsOffered = append(p.SkillsOffered, entity.UserSkillOffered{SkillID: s.ID, Skill: s})
	}
	for _, s := range wanted {
		p.SkillsWanted = append(p.SkillsWanted, entity.UserSkillWanted{SkillID: s.ID, Skill: s})
	}
	return p
}

func names(ps []entity.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.FullName
	}
	return out
}

func TestFilterProfiles(t *testing.T) {
	python := entity.Skill{ID: uuid.New(), Name: "Python", Category: "Programming"}
	guitar := entity.Skill{ID: uuid.New(), Name: "Guitar", Category: "Music"}
	spanish := entity.Skill{ID: uuid.New(), Name: "Spanish", Category: "Languages"}

	sarah := profileWith("Sarah", "Austin", []entity.Skill{python}, nil)
	mike := profileWith("Mike", "Denver", []entity.Skill{guitar}, []entity.Skill{python})
	ana := profileWith("Ana", "", []entity.Skill{spanish}, []entity.Skill{guitar})
	all := []entity.Profile{sarah, mike, ana}

	tests := []struct {
		name   string
		input  []entity.Profile
		filter ProfileFilter
		want   []string
	}{
		{"python matches only the offerer", []entity.Profile{sarah, profileWith("Mike", "", []entity.Skill{guitar}, nil)}, ProfileFilter{Query: "python"}, []string{"Sarah"}},
		{"no filter keeps order", all, ProfileFilter{}, []string{"Sarah", "Mike", "Ana"}},
		{"query is case-insensitive on names", all, ProfileFilter{Query: "MIK"}, []string{"Mike"}},
		{"query matches location", all, ProfileFilter{Query: "aus"}, []string{"Sarah"}},
		{"query matches wanted skills", all, ProfileFilter{Query: "guitar"}, []string{"Mike", "Ana"}},
		{"category uses offered skills only", all, ProfileFilter{Category: "Music"}, []string{"Mike"}},
		{"skill id uses offered skills only", all, ProfileFilter{SkillID: python.ID}, []string{"Sarah"}},
		{"viewer is excluded", all, ProfileFilter{ExcludeID: sarah.ID}, []string{"Mike", "Ana"}},
		{"criteria combine", all, ProfileFilter{Query: "python", Category: "Music"}, []string{"Mike"}},
		{"no match", all, ProfileFilter{Query: "cooking"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterProfiles(tt.input, tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
