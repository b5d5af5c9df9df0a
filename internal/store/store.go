package store

import (
	"errors"
	"time"

	"github.com/paperlog/internal/db"
)

// ErrNotFound is returned for any lookup that matches no live record.
var ErrNotFound = errors.New("record not found")

// Fields carries the editable subset of a post for create calls.
type Fields struct {
	Title   string
	Slug    string
	Excerpt string
	Content string
	Status  string
}

// ContentStore is the persistence contract consumed by the services: atomic
// single-document reads and updates on posts, an appendable version log per
// post, the retired-slug set and the preview capability.
type ContentStore interface {
	Get(id uint) (*db.Post, error)
	Create(fields Fields) (*db.Post, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	List(status string) ([]db.Post, error)
	FindBySlug(slug, status string) (*db.Post, error)
	FindByRetiredSlug(slug string) (*db.Post, error)

	AppendVersion(postID uint, snapshot db.PostVersion) (uint, error)
	GetVersion(postID, versionID uint) (*db.PostVersion, error)
	ListVersions(postID uint) ([]db.PostVersion, error)
	DeleteVersions(postID uint, ids []uint) error

	RetireSlug(postID uint, slug string) error
	RetiredSlugOwner(slug string) (uint, bool, error)

	UpdatePreview(postID uint, token string, enabled bool, issuedAt *time.Time) error
	FindByPreviewToken(token string) (*db.Post, error)
}
