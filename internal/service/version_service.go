package service

import (
	"errors"
	"sort"
	"time"

	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/store"
	"github.com/rs/zerolog/log"
)

// MaxVersionsPerPost caps the version log; the oldest snapshots beyond the
// cap are evicted after every append.
const MaxVersionsPerPost = 20

const restoreNote = "Before restore"

// VersionService maintains per-post immutable snapshots of editable fields.
type VersionService struct {
	store store.ContentStore
	slugs *SlugService
}

// NewVersionService creates a VersionService instance.
func NewVersionService(st store.ContentStore, slugs *SlugService) *VersionService {
	return &VersionService{store: st, slugs: slugs}
}

// Create snapshots the post's current editable fields into its version log
// and enforces retention. Safe to call when the post has no prior versions.
func (s *VersionService) Create(postID uint, note string) (*db.PostVersion, error) {
	post, err := s.store.Get(postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	snapshot := db.PostVersion{
		PostID:  post.ID,
		Title:   post.Title,
		Slug:    post.Slug,
		Excerpt: post.Excerpt,
		Content: post.Content,
		Status:  post.Status,
		Note:    note,
	}

	id, err := s.store.AppendVersion(post.ID, snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.ID = id

	// Best effort: a failed eviction self-corrects on the next append
	// because the full count is re-evaluated every time.
	s.evictOverflow(post.ID)

	return &snapshot, nil
}

// List returns all snapshots for a post ordered newest first. A post without
// versions yields an empty list, not an error.
func (s *VersionService) List(postID uint) ([]db.PostVersion, error) {
	if _, err := s.store.Get(postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.store.ListVersions(postID)
}

// Restore copies a chosen snapshot's editable fields back onto the post. The
// pre-restore state is checkpointed first so the restore itself is undoable.
// PublishedAt is left untouched regardless of the restored status.
func (s *VersionService) Restore(postID, versionID uint) (*db.Post, error) {
	post, err := s.store.Get(postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	version, err := s.store.GetVersion(postID, versionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	if _, err := s.Create(postID, restoreNote); err != nil {
		return nil, err
	}

	slug, err := s.slugs.Claim(post.ID, post.Slug, version.Slug)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":      version.Title,
		"slug":       slug,
		"excerpt":    version.Excerpt,
		"content":    version.Content,
		"status":     version.Status,
		"updated_at": time.Now(),
	}
	if err := s.store.Update(post.ID, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	restored, err := s.store.Get(post.ID)
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// evictOverflow deletes the oldest snapshots beyond the retention cap in one
// batch. Sorting is explicit by creation time: store-level ordering is not a
// guarantee the retention invariant may rest on.
func (s *VersionService) evictOverflow(postID uint) {
	versions, err := s.store.ListVersions(postID)
	if err != nil {
		log.Warn().Err(err).Uint("post", postID).Msg("version eviction: list failed")
		return
	}
	if len(versions) <= MaxVersionsPerPost {
		return
	}

	sort.SliceStable(versions, func(i, j int) bool {
		if versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].ID < versions[j].ID
		}
		return versions[i].CreatedAt.Before(versions[j].CreatedAt)
	})

	overflow := versions[:len(versions)-MaxVersionsPerPost]
	ids := make([]uint, 0, len(overflow))
	for _, v := range overflow {
		ids = append(ids, v.ID)
	}

	if err := s.store.DeleteVersions(postID, ids); err != nil {
		log.Warn().Err(err).Uint("post", postID).Ints("versions", intIDs(ids)).
			Msg("version eviction: delete failed")
	}
}

func intIDs(ids []uint) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
