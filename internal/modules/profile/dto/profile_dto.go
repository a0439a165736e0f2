package dto

// UpdateProfileInput carries the editable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	FullName     *string `json:"full_name" form:"full_name" binding:"omitempty,max=255"`
	Location     *string `json:"location" form:"location" binding:"omitempty,max=255"`
	Availability *string `json:"availability" form:"availability" binding:"omitempty,max=50"`
	IsPublic     *bool   `json:"is_public" form:"is_public"`
	Bio          *string `json:"bio" form:"bio" binding:"omitempty,max=2000"`
}

// BrowseProfilesQuery is the query string of the profile listing.
type BrowseProfilesQuery struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	SkillID  string `form:"skill_id" binding:"omitempty,uuid"`
}

type SearchTokenResponse struct {
	Token     string `json:"token"`
	IndexUID  string `json:"index_uid"`
	ExpiresIn int    `json:"expires_in"`
}
