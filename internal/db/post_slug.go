package db

import "gorm.io/gorm"

// PostSlug keeps a retired slug of a post for permanent redirects. The set is
// append-only and flat: every slug a post has ever had lives here, so retired
// lookups never need to chain.
type PostSlug struct {
	gorm.Model
	PostID uint   `gorm:"index"`
	Slug   string `gorm:"index"`
}

// TableName 指定自定义表名。
func (PostSlug) TableName() string {
	return "post_slugs"
}
