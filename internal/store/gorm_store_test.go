package store

import (
	"errors"
	"testing"
	"time"

	"github.com/paperlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoreTestDB(t *testing.T) (*GormStore, func()) {
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

	return NewGormStore(gdb), func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	post, err := st.Create(Fields{Title: "Hello", Slug: "hello", Content: "hi", Status: db.StatusDraft})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.ID == 0 {
		t.Fatal("expected store-assigned id")
	}

	loaded, err := st.Get(post.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Slug != "hello" {
		t.Fatalf("expected slug hello, got %s", loaded.Slug)
	}
}

func TestGetUnknownPostReturnsNotFound(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	if _, err := st.Get(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUnknownPostReturnsNotFound(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	err := st.Update(42, map[string]interface{}{"title": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindBySlugHonorsStatusFilter(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	if _, err := st.Create(Fields{Slug: "draft-only", Status: db.StatusDraft}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := st.FindBySlug("draft-only", db.StatusPublished); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for published filter, got %v", err)
	}

	post, err := st.FindBySlug("draft-only", "")
	if err != nil {
		t.Fatalf("FindBySlug returned error: %v", err)
	}
	if post.Slug != "draft-only" {
		t.Fatalf("expected draft-only, got %s", post.Slug)
	}
}

func TestRetireSlugIsIdempotent(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	post, err := st.Create(Fields{Slug: "current", Status: db.StatusDraft})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := st.RetireSlug(post.ID, "old"); err != nil {
		t.Fatalf("RetireSlug returned error: %v", err)
	}
	if err := st.RetireSlug(post.ID, "old"); err != nil {
		t.Fatalf("second RetireSlug returned error: %v", err)
	}

	var count int64
	if err := st.db.Model(&db.PostSlug{}).Where("post_id = ? AND slug = ?", post.ID, "old").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retired slug row, got %d", count)
	}

	owner, found, err := st.RetiredSlugOwner("old")
	if err != nil {
		t.Fatalf("RetiredSlugOwner returned error: %v", err)
	}
	if !found || owner != post.ID {
		t.Fatalf("expected owner %d, got %d (found=%v)", post.ID, owner, found)
	}
}

func TestDeleteCascadesVersionsAndRetiredSlugs(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	post, err := st.Create(Fields{Slug: "doomed", Status: db.StatusDraft})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := st.AppendVersion(post.ID, db.PostVersion{Title: "v1"}); err != nil {
		t.Fatalf("AppendVersion returned error: %v", err)
	}
	if err := st.RetireSlug(post.ID, "former"); err != nil {
		t.Fatalf("RetireSlug returned error: %v", err)
	}

	if err := st.Delete(post.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := st.Get(post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected post gone, got %v", err)
	}
	versions, err := st.ListVersions(post.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions after delete, got %d", len(versions))
	}
	if _, found, _ := st.RetiredSlugOwner("former"); found {
		t.Fatal("expected retired slug removed with post")
	}
}

func TestDeleteVersionsRemovesBatch(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	post, err := st.Create(Fields{Slug: "p", Status: db.StatusDraft})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var ids []uint
	for i := 0; i < 3; i++ {
		id, err := st.AppendVersion(post.ID, db.PostVersion{Note: "snap"})
		if err != nil {
			t.Fatalf("AppendVersion returned error: %v", err)
		}
		ids = append(ids, id)
	}

	if err := st.DeleteVersions(post.ID, ids[:2]); err != nil {
		t.Fatalf("DeleteVersions returned error: %v", err)
	}

	versions, err := st.ListVersions(post.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	if len(versions) != 1 || versions[0].ID != ids[2] {
		t.Fatalf("expected only version %d to survive, got %+v", ids[2], versions)
	}
}

func TestFindByPreviewTokenRequiresEnabled(t *testing.T) {
	st, cleanup := setupStoreTestDB(t)
	defer cleanup()

	post, err := st.Create(Fields{Slug: "p", Status: db.StatusDraft})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Now()
	if err := st.UpdatePreview(post.ID, "tok", true, &now); err != nil {
		t.Fatalf("UpdatePreview returned error: %v", err)
	}

	found, err := st.FindByPreviewToken("tok")
	if err != nil {
		t.Fatalf("FindByPreviewToken returned error: %v", err)
	}
	if found.ID != post.ID {
		t.Fatalf("expected post %d, got %d", post.ID, found.ID)
	}

	if err := st.UpdatePreview(post.ID, "tok", false, &now); err != nil {
		t.Fatalf("UpdatePreview returned error: %v", err)
	}
	if _, err := st.FindByPreviewToken("tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for disabled token, got %v", err)
	}

	if _, err := st.FindByPreviewToken(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty token, got %v", err)
	}
}
