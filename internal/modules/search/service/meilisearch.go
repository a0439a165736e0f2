package search

import (
	"fmt"
	"log"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/pkg/sanitize"
)

const (
	ProfilesIndex   = "profiles"
	signingKeyName  = "TenantTokenSigner"
	visibleProfiles = "is_public = true AND status = 'active'"
)

// ProfileDocument is the denormalized search record of a profile.
type ProfileDocument struct {
	ID            string   `json:"id"`
	FullName      string   `json:"full_name"`
	Location      string   `json:"location"`
	AvatarURL     string   `json:"avatar_url"`
	Bio           string   `json:"bio"`
	Availability  string   `json:"availability"`
	Rating        float64  `json:"rating"`
	TotalSwaps    int      `json:"total_swaps"`
	IsPublic      bool     `json:"is_public"`
	Status        string   `json:"status"`
	SkillsOffered []string `json:"skills_offered"`
	SkillsWanted  []string `json:"skills_wanted"`
	SkillIDs      []string `json:"skill_ids"`
	Categories    []string `json:"categories"`
	CreatedAt     int64    `json:"created_at"`
}

func NewProfileDocument(p *entity.Profile) ProfileDocument {
	doc := ProfileDocument{
		ID:            p.ID.String(),
		FullName:      p.FullName,
		Location:      getStringOrEmpty(p.Location),
		AvatarURL:     getStringOrEmpty(p.AvatarURL),
		Bio:           sanitize.Text(getStringOrEmpty(p.Bio)),
		Availability:  p.Availability,
		Rating:        p.Rating,
		TotalSwaps:    p.TotalSwaps,
		IsPublic:      p.IsPublic,
		Status:        p.Status,
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		SkillIDs:      []string{},
		Categories:    []string{},
		CreatedAt:     p.CreatedAt.Unix(),
	}

	seenCategory := make(map[string]bool)
	for _, o := range p.SkillsOffered {
		doc.SkillsOffered = append(doc.SkillsOffered, o.Skill.Name)
		doc.SkillIDs = append(doc.SkillIDs, o.SkillID.String())
		if c := o.Skill.Category; c != "" && !seenCategory[c] {
			seenCategory[c] = true
			doc.Categories = append(doc.Categories, c)
		}
	}
	for _, w := range p.SkillsWanted {
		doc.SkillsWanted = append(doc.SkillsWanted, w.Skill.Name)
	}
	return doc
}

// ProfileIndex is the external full-text index over profiles.
type ProfileIndex interface {
	Upsert(docs ...ProfileDocument) error
	Delete(id string) error
	TenantToken(isAdmin bool) (string, error)
}

type meiliProfileIndex struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
}

// NewMeiliProfileIndex configures the profiles index and the tenant token
// signing key. Setup failures are logged; indexing calls report their own
// errors later.
func NewMeiliProfileIndex(client meilisearch.ServiceManager) ProfileIndex {
	s := &meiliProfileIndex{client: client}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *meiliProfileIndex) initIndex() {
	filterable := []string{"is_public", "status", "categories", "skill_ids", "availability"}
	filterableInterface := make([]any, len(filterable))
	for i, v := range filterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(ProfilesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update profiles filterable attributes: %v", err)
	}

	sortable := []string{"created_at", "rating", "total_swaps"}
	if _, err := s.client.Index(ProfilesIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update profiles sortable attributes: %v", err)
	}

	searchable := []string{"full_name", "skills_offered", "skills_wanted", "location", "bio"}
	if _, err := s.client.Index(ProfilesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update profiles searchable attributes: %v", err)
	}
}

func (s *meiliProfileIndex) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signingKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        signingKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{ProfilesIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *meiliProfileIndex) Upsert(docs ...ProfileDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(ProfilesIndex).AddDocuments(docs, strPtr("id"))
	return err
}

func (s *meiliProfileIndex) Delete(id string) error {
	_, err := s.client.Index(ProfilesIndex).DeleteDocument(id)
	return err
}

// TenantToken issues a 24h search token. Non-admin tokens only see public
// active profiles.
func (s *meiliProfileIndex) TenantToken(isAdmin bool) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	rules := map[string]any{"filter": visibleProfiles}
	if isAdmin {
		rules = map[string]any{"filter": nil}
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, map[string]any{ProfilesIndex: rules}, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
