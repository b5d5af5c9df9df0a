package db

import "gorm.io/gorm"

// PostVersion 记录文章可编辑字段的历史版本快照。
// Rows are immutable once created and belong to exactly one post.
type PostVersion struct {
	gorm.Model
	PostID  uint `gorm:"index"`
	Title   string
	Slug    string
	Excerpt string `gorm:"type:text"`
	Content string `gorm:"type:text"`
	Status  string
	Note    string
}

// TableName 指定自定义表名。
func (PostVersion) TableName() string {
	return "post_versions"
}
