package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
)

type fakeIndex struct {
	docs    map[string]ProfileDocument
	deleted []string
}

func (f *fakeIndex) Upsert(docs ...ProfileDocument) error {
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeIndex) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) TenantToken(isAdmin bool) (string, error) {
	if isAdmin {
		return "admin-token", nil
	}
	return "member-token", nil
}

type fakeLoader map[uuid.UUID]*entity.Profile

func (f fakeLoader) FindByID(_ context.Context, id uuid.UUID) (*entity.Profile, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrNotFound
}

func TestIndexerRefresh(t *testing.T) {
	bio := "<b>Loves</b> teaching"
	music := entity.Skill{ID: uuid.New(), Name: "Guitar", Category: "Music"}
	p := &entity.Profile{
		ID:       uuid.New(),
		FullName: "Mike",
		Bio:      &bio,
		IsPublic: true,
		Status:   entity.ProfileStatusActive,
		SkillsOffered: []entity.UserSkillOffered{
			{SkillID: music.ID, Skill: music},
		},
	}

	idx := &fakeIndex{docs: map[string]ProfileDocument{}}
	indexer := NewIndexer(idx, fakeLoader{p.ID: p})
	ctx := context.Background()

	indexer.Refresh(ctx, p.ID)
	doc, ok := idx.docs[p.ID.String()]
	if !ok {
		t.Fatal("profile not indexed")
	}
	if doc.Bio != "Loves teaching" {
		t.Errorf("bio = %q", doc.Bio)
	}
	if len(doc.Categories) != 1 || doc.Categories[0] != "Music" {
		t.Errorf("categories = %v", doc.Categories)
	}
	if len(doc.SkillIDs) != 1 || doc.SkillIDs[0] != music.ID.String() {
		t.Errorf("skill ids = %v", doc.SkillIDs)
	}

	// unknown profile: logged, not indexed
	indexer.Refresh(ctx, uuid.New())
	if len(idx.docs) != 1 {
		t.Fatalf("docs = %d", len(idx.docs))
	}

	indexer.Remove(ctx, p.ID)
	if len(idx.deleted) != 1 || idx.deleted[0] != p.ID.String() {
		t.Fatalf("deleted = %v", idx.deleted)
	}

	if tok, _ := indexer.SearchToken(false); tok != "member-token" {
		t.Fatalf("token = %q", tok)
	}
}

func TestNilIndexer(t *testing.T) {
	var indexer *Indexer
	ctx := context.Background()

	indexer.Refresh(ctx, uuid.New())
	indexer.Remove(ctx, uuid.New())
	if _, err := indexer.SearchToken(true); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if err := NewIndexer(nil, fakeLoader{}).Reindex(ctx, nil); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
