package service

import (
	"errors"
	"testing"

	"github.com/paperlog/internal/db"
)

func TestIssueResolvesDraftPost(t *testing.T) {
	h, cleanup := setupServiceTestDB(t)
	defer cleanup()

	post := h.mustSave(t, SaveInput{Title: "Secret", Slug: "secret", Status: db.StatusDraft})

	token, err := h.previews.Issue(post.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars of token, got %d", len(token))
	}

	// Preview access bypasses publish-status checks entirely.
	resolved, err := h.previews.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.ID != post.ID {
		t.Fatalf("expected post %d, got %d", post.ID, resolved.ID)
	}
}

func TestReissueInvalidatesPreviousToken(t *testing.T) {
	h, cleanup := setupServiceTestDB(t)
	defer cleanup()

	post := h.mustSave(t, SaveInput{Title: "P", Slug: "p"})

	first, err := h.previews.Issue(post.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	second, err := h.previews.Issue(post.ID)
	if err != nil {
		t.Fatalf("second Issue returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh token on reissue")
	}

	if _, err := h.previews.Resolve(first); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected old token to be invalid, got %v", err)
	}
	if _, err := h.previews.Resolve(second); err != nil {
		t.Fatalf("expected new token to resolve, got %v", err)
	}
}

func TestRevokedTokenIndistinguishableFromUnknown(t *testing.T) {
	h, cleanup := setupServiceTestDB(t)
	defer cleanup()

	post := h.mustSave(t, SaveInput{Title: "P", Slug: "p"})
	token, err := h.previews.Issue(post.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if err := h.previews.Revoke(post.ID); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	revokedErr := func() error {
		_, err := h.previews.Resolve(token)
		return err
	}()
	unknownErr := func() error {
		_, err := h.previews.Resolve("never-issued")
		return err
	}()
	if !errors.Is(revokedErr, ErrPostNotFound) || !errors.Is(unknownErr, ErrPostNotFound) {
		t.Fatalf("expected identical not-found failures, got %v and %v", revokedErr, unknownErr)
	}

	// Revocation clears the stored value, it is not a mere flag flip.
	status, err := h.previews.Status(post.ID)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Token != "" || status.Enabled {
		t.Fatalf("expected cleared capability, got %+v", status)
	}
}

func TestPreviewStatusReportsIssuedToken(t *testing.T) {
	h, cleanup := setupServiceTestDB(t)
	defer cleanup()

	post := h.mustSave(t, SaveInput{Title: "P", Slug: "p"})
	token, err := h.previews.Issue(post.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	status, err := h.previews.Status(post.ID)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Token != token || !status.Enabled || status.IssuedAt == nil {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestPreviewUnknownPost(t *testing.T) {
	h, cleanup := setupServiceTestDB(t)
	defer cleanup()

	if _, err := h.previews.Issue(42); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if err := h.previews.Revoke(42); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
