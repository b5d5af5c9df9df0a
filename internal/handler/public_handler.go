package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paperlog/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

// ShowPost is the public read path: a live slug of a published post returns
// content directly, a retired slug issues a permanent redirect to the current
// slug, anything else is a 404.
func (a *API) ShowPost(c *gin.Context) {
	resolution, err := a.slugs.Resolve(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	if resolution.RedirectTo != "" {
		c.Redirect(http.StatusMovedPermanently, "/posts/"+resolution.RedirectTo)
		return
	}

	post := resolution.Post
	c.JSON(http.StatusOK, gin.H{
		"post": postPayload(post),
		"html": renderMarkdown(post.Content),
	})
}

// ShowPublishedIndex lists published posts, newest publish first.
func (a *API) ShowPublishedIndex(c *gin.Context) {
	posts, err := a.posts.ListPublished()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list posts")
		return
	}

	payload := make([]gin.H, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		payload = append(payload, gin.H{
			"title":        post.Title,
			"slug":         post.Slug,
			"excerpt":      post.Excerpt,
			"published_at": post.PublishedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"posts": payload})
}
