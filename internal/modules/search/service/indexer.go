package search

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

var ErrSearchUnavailable = errors.New("search index is not configured")

// ProfileLoader loads a profile with its offered and wanted skills.
type ProfileLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

// Indexer keeps the profile index in step with the database. A nil Indexer
// or one without an index does nothing.
type Indexer struct {
	index  ProfileIndex
	loader ProfileLoader
}

func NewIndexer(index ProfileIndex, loader ProfileLoader) *Indexer {
	return &Indexer{index: index, loader: loader}
}

func (i *Indexer) enabled() bool {
	return i != nil && i.index != nil
}

// Refresh re-reads the profile and pushes it to the index. Errors are logged.
func (i *Indexer) Refresh(ctx context.Context, profileID uuid.UUID) {
	if !i.enabled() {
		return
	}
	profile, err := i.loader.FindByID(ctx, profileID)
	if err != nil {
		log.Printf("search: load profile %s for indexing: %v", profileID, err)
		return
	}
	if err := i.index.Upsert(NewProfileDocument(profile)); err != nil {
		log.Printf("search: index profile %s: %v", profileID, err)
	}
}

// Remove drops the profile from the index. Errors are logged.
func (i *Indexer) Remove(ctx context.Context, profileID uuid.UUID) {
	if !i.enabled() {
		return
	}
	if err := i.index.Delete(profileID.String()); err != nil {
		log.Printf("search: remove profile %s: %v", profileID, err)
	}
}

// Reindex pushes every given profile in one batch.
func (i *Indexer) Reindex(ctx context.Context, profiles []entity.Profile) error {
	if !i.enabled() {
		return ErrSearchUnavailable
	}
	docs := make([]ProfileDocument, len(profiles))
	for n := range profiles {
		docs[n] = NewProfileDocument(&profiles[n])
	}
	return i.index.Upsert(docs...)
}

// SearchToken returns a tenant token scoped to what the caller may see.
func (i *Indexer) SearchToken(isAdmin bool) (string, error) {
	if !i.enabled() {
		return "", ErrSearchUnavailable
	}
	return i.index.TenantToken(isAdmin)
}
