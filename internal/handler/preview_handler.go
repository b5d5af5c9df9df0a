package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paperlog/internal/service"
)

// IssuePreview generates a fresh preview token for a post, invalidating any
// previous one.
func (a *API) IssuePreview(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := a.previews.Issue(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to issue preview token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// PreviewStatus returns the post's current preview capability.
func (a *API) PreviewStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	status, err := a.previews.Status(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load preview status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     status.Token,
		"enabled":   status.Enabled,
		"issued_at": status.IssuedAt,
	})
}

// RevokePreview disables preview access and clears the stored token value.
func (a *API) RevokePreview(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.previews.Revoke(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to revoke preview token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ShowPreview is the public, authentication-free preview read path: a valid
// enabled token grants read access to its post regardless of publish status.
// Every other token resolves to an indistinguishable 404.
func (a *API) ShowPreview(c *gin.Context) {
	post, err := a.previews.Resolve(c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load preview")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post": postPayload(post),
		"html": renderMarkdown(post.Content),
	})
}
