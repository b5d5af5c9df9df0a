package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/service"
	"github.com/rs/zerolog/log"
)

type savePostRequest struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Excerpt       string `json:"excerpt"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	CreateVersion bool   `json:"create_version"`
	Note          string `json:"note"`
	RequestID     string `json:"request_id"`
}

// SavePost is the single save endpoint consumed by the editor: it creates or
// updates a post from the full editable field set and optionally checkpoints
// a version of the pre-save state.
func (a *API) SavePost(c *gin.Context) {
	var req savePostRequest
	if !bindJSON(c, &req, "invalid save payload") {
		return
	}

	post, err := a.posts.Save(service.SaveInput{
		ID:            req.ID,
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Status:        req.Status,
		CreateVersion: req.CreateVersion,
		Note:          req.Note,
	})
	if err != nil {
		log.Warn().Err(err).Str("request", req.RequestID).Uint("post", req.ID).Msg("save failed")
		respondSaveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           post.ID,
		"slug":         post.Slug,
		"status":       post.Status,
		"updated_at":   post.UpdatedAt,
		"published_at": post.PublishedAt,
	})
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postPayload(post)})
}

// ListPosts 获取文章列表
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list posts")
		return
	}

	payload := make([]gin.H, 0, len(posts))
	for i := range posts {
		payload = append(payload, postPayload(&posts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"posts": payload})
}

// DeletePost 删除文章及其版本历史
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListVersions returns a post's snapshots newest first.
func (a *API) ListVersions(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	versions, err := a.versions.List(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to list versions")
		return
	}

	payload := make([]gin.H, 0, len(versions))
	for i := range versions {
		payload = append(payload, versionPayload(&versions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"versions": payload})
}

// CreateVersion checkpoints the post's current state with an optional note.
func (a *API) CreateVersion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if !bindJSON(c, &req, "invalid version payload") {
		return
	}

	version, err := a.versions.Create(id, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create version")
		return
	}

	c.JSON(http.StatusOK, gin.H{"version": versionPayload(version)})
}

// RestoreVersion copies a snapshot's fields back onto the post after
// checkpointing the pre-restore state.
func (a *API) RestoreVersion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	versionID, err := parseUintParam(c, "versionId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.versions.Restore(id, versionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrVersionNotFound):
			respondError(c, http.StatusNotFound, "version not found")
		case errors.Is(err, service.ErrSlugTaken):
			respondError(c, http.StatusConflict, "slug already taken")
		case errors.Is(err, service.ErrSlugEmpty):
			respondError(c, http.StatusUnprocessableEntity, "slug is required")
		default:
			respondError(c, http.StatusInternalServerError, "failed to restore version")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postPayload(post)})
}

func respondSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "post not found")
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, http.StatusConflict, "slug already taken")
	case errors.Is(err, service.ErrSlugEmpty):
		respondError(c, http.StatusUnprocessableEntity, "slug is required")
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(c, http.StatusUnprocessableEntity, "unknown post status")
	default:
		respondError(c, http.StatusServiceUnavailable, "store unavailable")
	}
}

func postPayload(post *db.Post) gin.H {
	return gin.H{
		"id":           post.ID,
		"title":        post.Title,
		"slug":         post.Slug,
		"excerpt":      post.Excerpt,
		"content":      post.Content,
		"status":       post.Status,
		"created_at":   post.CreatedAt,
		"updated_at":   post.UpdatedAt,
		"published_at": post.PublishedAt,
	}
}

func versionPayload(version *db.PostVersion) gin.H {
	return gin.H{
		"id":         version.ID,
		"title":      version.Title,
		"slug":       version.Slug,
		"excerpt":    version.Excerpt,
		"content":    version.Content,
		"status":     version.Status,
		"note":       version.Note,
		"created_at": version.CreatedAt.Format(time.RFC3339),
	}
}
