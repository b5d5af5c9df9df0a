package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/store"
)

// previewTokenBytes gives 256 bits of entropy per token.
const previewTokenBytes = 32

// PreviewStatus describes the current preview capability of a post.
type PreviewStatus struct {
	Token    string
	Enabled  bool
	IssuedAt *time.Time
}

// PreviewService issues and resolves unguessable bearer tokens granting read
// access to a single post regardless of publish status.
type PreviewService struct {
	store store.ContentStore
}

// NewPreviewService creates a PreviewService instance.
func NewPreviewService(st store.ContentStore) *PreviewService {
	return &PreviewService{store: st}
}

// Issue generates a fresh token for the post, replacing and immediately
// invalidating any previous one. Only one token is valid per post at a time.
func (s *PreviewService) Issue(postID uint) (string, error) {
	if _, err := s.store.Get(postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}

	buf := make([]byte, previewTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	now := time.Now()
	if err := s.store.UpdatePreview(postID, token, true, &now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}
	return token, nil
}

// Revoke disables preview access and clears the stored token value so the
// old token is no longer comparable to anything.
func (s *PreviewService) Revoke(postID uint) error {
	if err := s.store.UpdatePreview(postID, "", false, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// Status returns the post's current preview capability.
func (s *PreviewService) Status(postID uint) (*PreviewStatus, error) {
	post, err := s.store.Get(postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &PreviewStatus{
		Token:    post.PreviewToken,
		Enabled:  post.PreviewEnabled,
		IssuedAt: post.PreviewIssuedAt,
	}, nil
}

// Resolve returns the post a valid enabled token points at. Unknown, revoked
// and disabled tokens all fail identically with ErrPostNotFound.
func (s *PreviewService) Resolve(token string) (*db.Post, error) {
	post, err := s.store.FindByPreviewToken(token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}
