package store

import (
	"errors"
	"time"

	"github.com/paperlog/internal/db"
	"gorm.io/gorm"
)

// GormStore implements ContentStore on top of the sqlite database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore instance.
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// Get fetches a post by id.
func (s *GormStore) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a new post and returns it with the assigned identity.
func (s *GormStore) Create(fields Fields) (*db.Post, error) {
	post := db.Post{
		Title:   fields.Title,
		Slug:    fields.Slug,
		Excerpt: fields.Excerpt,
		Content: fields.Content,
		Status:  fields.Status,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies a partial field map to a post in a single statement.
func (s *GormStore) Update(id uint, updates map[string]interface{}) error {
	result := s.db.Model(&db.Post{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post together with its version log and retired slugs.
func (s *GormStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&db.PostVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.PostSlug{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Post{}, id).Error
	})
}

// List returns posts filtered by status ("" for all). Published posts are
// ordered by publish time, everything else by creation time.
func (s *GormStore) List(status string) ([]db.Post, error) {
	var posts []db.Post
	query := s.db.Model(&db.Post{})
	orderBy := "created_at desc, id desc"
	if status != "" {
		query = query.Where("status = ?", status)
		if status == db.StatusPublished {
			orderBy = "published_at desc, id desc"
		}
	}
	if err := query.Order(orderBy).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FindBySlug looks up a post by its live slug, optionally filtered by status.
func (s *GormStore) FindBySlug(slug, status string) (*db.Post, error) {
	query := s.db.Where("slug = ?", slug)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var post db.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// FindByRetiredSlug looks up the post that once owned the given slug.
func (s *GormStore) FindByRetiredSlug(slug string) (*db.Post, error) {
	var retired db.PostSlug
	if err := s.db.Where("slug = ?", slug).First(&retired).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(retired.PostID)
}

// AppendVersion writes an immutable snapshot into the post's version log.
func (s *GormStore) AppendVersion(postID uint, snapshot db.PostVersion) (uint, error) {
	snapshot.ID = 0
	snapshot.PostID = postID
	if err := s.db.Create(&snapshot).Error; err != nil {
		return 0, err
	}
	return snapshot.ID, nil
}

// GetVersion fetches a single snapshot belonging to the given post.
func (s *GormStore) GetVersion(postID, versionID uint) (*db.PostVersion, error) {
	var version db.PostVersion
	if err := s.db.Where("post_id = ?", postID).First(&version, versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// ListVersions returns all snapshots for a post, newest first.
func (s *GormStore) ListVersions(postID uint) ([]db.PostVersion, error) {
	var versions []db.PostVersion
	if err := s.db.Where("post_id = ?", postID).
		Order("created_at desc, id desc").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// DeleteVersions removes the given snapshots from a post's log in one batch.
func (s *GormStore) DeleteVersions(postID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Where("post_id = ? AND id IN ?", postID, ids).
		Delete(&db.PostVersion{}).Error
}

// RetireSlug appends a slug to the post's retired set. Appending the same
// slug twice is a no-op.
func (s *GormStore) RetireSlug(postID uint, slug string) error {
	var retired db.PostSlug
	return s.db.Where(db.PostSlug{PostID: postID, Slug: slug}).
		FirstOrCreate(&retired).Error
}

// RetiredSlugOwner reports which post holds the given slug in its retired set.
func (s *GormStore) RetiredSlugOwner(slug string) (uint, bool, error) {
	var retired db.PostSlug
	if err := s.db.Where("slug = ?", slug).First(&retired).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return retired.PostID, true, nil
}

// UpdatePreview writes the preview capability fields in a single statement.
func (s *GormStore) UpdatePreview(postID uint, token string, enabled bool, issuedAt *time.Time) error {
	return s.Update(postID, map[string]interface{}{
		"preview_token":     token,
		"preview_enabled":   enabled,
		"preview_issued_at": issuedAt,
	})
}

// FindByPreviewToken resolves an enabled preview token to its post. Unknown,
// disabled and cleared tokens are indistinguishable.
func (s *GormStore) FindByPreviewToken(token string) (*db.Post, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var post db.Post
	if err := s.db.Where("preview_token = ? AND preview_enabled = ?", token, true).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
