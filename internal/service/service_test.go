package service

import (
	"testing"

	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceHarness struct {
	store    *store.GormStore
	slugs    *SlugService
	versions *VersionService
	previews *PreviewService
	posts    *PostService
}

func setupServiceTestDB(t *testing.T) (*serviceHarness, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Post{}, &db.PostVersion{}, &db.PostSlug{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	contentStore := store.NewGormStore(gdb)
	slugs := NewSlugService(contentStore)
	versions := NewVersionService(contentStore, slugs)

	harness := &serviceHarness{
		store:    contentStore,
		slugs:    slugs,
		versions: versions,
		previews: NewPreviewService(contentStore),
		posts:    NewPostService(contentStore, slugs, versions),
	}

	return harness, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (h *serviceHarness) mustSave(t *testing.T, input SaveInput) *db.Post {
	t.Helper()
	post, err := h.posts.Save(input)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	return post
}
