package handler

import (
	"github.com/paperlog/internal/auth"
	"github.com/paperlog/internal/service"
	"github.com/paperlog/internal/store"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	slugs    *service.SlugService
	versions *service.VersionService
	previews *service.PreviewService
	users    *auth.UserVerifier
	verifier auth.Verifier
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB) *API {
	contentStore := store.NewGormStore(gdb)
	slugs := service.NewSlugService(contentStore)
	versions := service.NewVersionService(contentStore, slugs)
	users := auth.NewUserVerifier(gdb)

	return &API{
		db:       gdb,
		posts:    service.NewPostService(contentStore, slugs, versions),
		slugs:    slugs,
		versions: versions,
		previews: service.NewPreviewService(contentStore),
		users:    users,
		verifier: users,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
