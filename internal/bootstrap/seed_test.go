package bootstrap_test

import (
	"testing"

	"github.com/raunak23427/mutual-skill-sync/internal/bootstrap"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/testutil"
)

func TestSeedSkillsIsIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)

	for i := 0; i < 2; i++ {
		if err := bootstrap.SeedSkills(db); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&entity.Skill{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(bootstrap.StarterSkills)) {
		t.Fatalf("count = %d, want %d", count, len(bootstrap.StarterSkills))
	}

	var unapproved int64
	db.Model(&entity.Skill{}).Where("is_approved = ?", false).Count(&unapproved)
	if unapproved != 0 {
		t.Fatalf("seeded skills must be approved, %d are not", unapproved)
	}
}
