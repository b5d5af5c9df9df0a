package service

import (
	"errors"
	"strings"
	"time"

	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/store"
)

// SaveInput represents the full editable field set carried by one save
// request, plus the optional version-checkpoint flag for manual saves.
type SaveInput struct {
	ID            uint
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	Status        string
	CreateVersion bool
	Note          string
}

// PostService wraps post related content-store operations.
type PostService struct {
	store    store.ContentStore
	slugs    *SlugService
	versions *VersionService
}

// NewPostService creates a PostService instance.
func NewPostService(st store.ContentStore, slugs *SlugService, versions *VersionService) *PostService {
	return &PostService{store: st, slugs: slugs, versions: versions}
}

// Get fetches a post by id.
func (s *PostService) Get(id uint) (*db.Post, error) {
	post, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// List returns all posts for the admin editor, newest first.
func (s *PostService) List() ([]db.Post, error) {
	return s.store.List("")
}

// ListPublished returns the public index, newest publish first.
func (s *PostService) ListPublished() ([]db.Post, error) {
	return s.store.List(db.StatusPublished)
}

// Save creates or updates a post from one save request. On updates a version
// snapshot of the pre-save state is taken first when CreateVersion is set.
// The first transition to published stamps PublishedAt exactly once; later
// unpublish/republish cycles never touch it again.
func (s *PostService) Save(input SaveInput) (*db.Post, error) {
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}

	if input.ID == 0 {
		return s.create(input, status)
	}
	return s.update(input, status)
}

func (s *PostService) create(input SaveInput, status string) (*db.Post, error) {
	slug, err := s.slugs.Claim(0, "", input.Slug)
	if err != nil {
		return nil, err
	}

	post, err := s.store.Create(store.Fields{
		Title:   strings.TrimSpace(input.Title),
		Slug:    slug,
		Excerpt: input.Excerpt,
		Content: input.Content,
		Status:  status,
	})
	if err != nil {
		return nil, err
	}

	if status == db.StatusPublished {
		now := time.Now()
		if err := s.store.Update(post.ID, map[string]interface{}{"published_at": now}); err != nil {
			return nil, err
		}
		post.PublishedAt = &now
	}

	return post, nil
}

func (s *PostService) update(input SaveInput, status string) (*db.Post, error) {
	post, err := s.Get(input.ID)
	if err != nil {
		return nil, err
	}

	slug, err := s.slugs.Claim(post.ID, post.Slug, input.Slug)
	if err != nil {
		return nil, err
	}

	// Checkpoint the pre-save state only after the slug is validated, so a
	// rejected save never leaves a version behind. The post row is untouched
	// at this point and the snapshot still captures the pre-save fields.
	// Autosaves arrive with CreateVersion unset and skip this.
	if input.CreateVersion {
		if _, err := s.versions.Create(post.ID, input.Note); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"title":      strings.TrimSpace(input.Title),
		"slug":       slug,
		"excerpt":    input.Excerpt,
		"content":    input.Content,
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == db.StatusPublished && post.PublishedAt == nil {
		updates["published_at"] = time.Now()
	}

	if err := s.store.Update(post.ID, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return s.Get(post.ID)
}

// Delete removes a post together with its version log and retired slugs.
func (s *PostService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.store.Delete(id)
}

func normalizeStatus(raw string) (string, error) {
	status := strings.TrimSpace(raw)
	if status == "" {
		return db.StatusDraft, nil
	}
	if status != db.StatusDraft && status != db.StatusPublished {
		return "", ErrInvalidStatus
	}
	return status, nil
}
