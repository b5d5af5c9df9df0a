package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/store"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrSlugTaken       = errors.New("slug already taken")
	ErrSlugEmpty       = errors.New("slug is empty after normalization")
	ErrInvalidStatus   = errors.New("unknown post status")
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSlug lowercases the input, collapses runs of non-alphanumeric
// characters into single hyphens and trims leading/trailing hyphens.
func NormalizeSlug(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	collapsed := slugSeparators.ReplaceAllString(lowered, "-")
	return strings.Trim(collapsed, "-")
}

// SlugResolution is the outcome of resolving a requested slug on the public
// read path. RedirectTo is empty on a direct hit.
type SlugResolution struct {
	Post       *db.Post
	RedirectTo string
}

// SlugService resolves public slugs and guards slug continuity on writes.
type SlugService struct {
	store store.ContentStore
}

// NewSlugService creates a SlugService instance.
func NewSlugService(st store.ContentStore) *SlugService {
	return &SlugService{store: st}
}

// Resolve decides whether a requested slug is the live slug of a published
// post, a retired slug requiring a permanent redirect, or unknown.
func (s *SlugService) Resolve(requested string) (*SlugResolution, error) {
	slug := NormalizeSlug(requested)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	post, err := s.store.FindBySlug(slug, db.StatusPublished)
	if err == nil {
		return &SlugResolution{Post: post}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	post, err = s.store.FindByRetiredSlug(slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.Published() {
		return nil, ErrPostNotFound
	}

	// The retired set is flat, so a single hop always lands on the current
	// slug even through multiple historical renames.
	return &SlugResolution{Post: post, RedirectTo: post.Slug}, nil
}

// Claim validates a requested slug for the given post and retires the
// previous live slug when the claim changes it. postID is zero for posts that
// have not been created yet. Returns the normalized slug.
func (s *SlugService) Claim(postID uint, currentSlug, requested string) (string, error) {
	slug := NormalizeSlug(requested)
	if slug == "" {
		return "", ErrSlugEmpty
	}
	if slug == currentSlug {
		return slug, nil
	}

	if err := s.checkAvailable(postID, slug); err != nil {
		return "", err
	}

	// Retire the previous live slug before the new one is committed so
	// redirect continuity never has a gap.
	if postID != 0 && currentSlug != "" {
		if err := s.store.RetireSlug(postID, currentSlug); err != nil {
			return "", err
		}
	}

	return slug, nil
}

func (s *SlugService) checkAvailable(postID uint, slug string) error {
	existing, err := s.store.FindBySlug(slug, "")
	if err == nil {
		if existing.ID != postID {
			return ErrSlugTaken
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// A slug still referenced by another post's retired set may not be
	// claimed; old links must keep redirecting to their original post.
	owner, found, err := s.store.RetiredSlugOwner(slug)
	if err != nil {
		return err
	}
	if found && owner != postID {
		return ErrSlugTaken
	}

	return nil
}
