package dto

// AddOfferedSkillRequest references a catalogue skill by id or by name. An
// unknown name creates an unapproved skill.
type AddOfferedSkillRequest struct {
	SkillID          string `json:"skill_id" binding:"omitempty,uuid"`
	SkillName        string `json:"skill_name" binding:"required_without=SkillID,max=100"`
	Category         string `json:"category" binding:"max=100"`
	ProficiencyLevel string `json:"proficiency_level" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsExperience  *int   `json:"years_experience" binding:"omitempty,min=0,max=80"`
}

type AddWantedSkillRequest struct {
	SkillID   string `json:"skill_id" binding:"omitempty,uuid"`
	SkillName string `json:"skill_name" binding:"required_without=SkillID,max=100"`
	Category  string `json:"category" binding:"max=100"`
	Urgency   string `json:"urgency" binding:"omitempty,oneof=low medium high"`
}
