package bootstrap

import (
	"log"

	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Profile{},
		&entity.Skill{},
		&entity.UserSkillOffered{},
		&entity.UserSkillWanted{},
		&entity.SwapRequest{},
		&entity.Feedback{},
		&entity.AdminAction{},
		&entity.PlatformMessage{},
	)
}

// StarterSkills is the catalogue seeded into an empty database.
var StarterSkills = []entity.Skill{
	{Name: "Python", Category: "Programming"},
	{Name: "JavaScript", Category: "Programming"},
	{Name: "Go", Category: "Programming"},
	{Name: "SQL", Category: "Programming"},
	{Name: "Graphic Design", Category: "Design"},
	{Name: "UI/UX Design", Category: "Design"},
	{Name: "Photography", Category: "Creative"},
	{Name: "Video Editing", Category: "Creative"},
	{Name: "Guitar", Category: "Music"},
	{Name: "Piano", Category: "Music"},
	{Name: "Spanish", Category: "Languages"},
	{Name: "French", Category: "Languages"},
	{Name: "Cooking", Category: "Lifestyle"},
	{Name: "Yoga", Category: "Fitness"},
	{Name: "Public Speaking", Category: "Business"},
	{Name: "Digital Marketing", Category: "Business"},
}

// SeedSkills inserts every starter skill that is not present yet. Seeded
// skills are approved.
func SeedSkills(db *gorm.DB) error {
	created := 0
	for _, s := range StarterSkills {
		var count int64
		if err := db.Model(&entity.Skill{}).
			Where("name_key = ?", entity.SkillNameKey(s.Name)).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			skill := s
			skill.IsApproved = true
			if err := db.Create(&skill).Error; err != nil {
				return err
			}
			created++
		}
	}

	log.Printf("Seeded %d skills", created)
	return nil
}
