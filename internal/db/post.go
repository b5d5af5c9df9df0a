package db

import (
	"time"

	"gorm.io/gorm"
)

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title   string
	Slug    string `gorm:"index"`
	Excerpt string `gorm:"type:text"`
	Content string `gorm:"type:text"`
	Status  string `gorm:"default:'draft'"`

	// PublishedAt is set once on the first transition to published and is
	// never cleared by a later unpublish.
	PublishedAt *time.Time

	// Preview capability: possession of the enabled token grants read access
	// to this post regardless of publish status.
	PreviewToken    string `gorm:"index"`
	PreviewEnabled  bool
	PreviewIssuedAt *time.Time
}

// Published reports whether the post is currently visible on the public site.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}
