package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SaveRequest carries the full editable field set for one save attempt.
type SaveRequest struct {
	ID            uint   `json:"id,omitempty"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Excerpt       string `json:"excerpt"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	CreateVersion bool   `json:"create_version,omitempty"`
	Note          string `json:"note,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// SaveResponse carries the assigned or confirmed post identity.
type SaveResponse struct {
	ID uint `json:"id"`
}

// SaveClient dispatches one save to the content store API. Implementations
// must run every request to completion; the coordinator discards stale
// results itself.
type SaveClient interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResponse, error)
}

// HTTPSaveClient posts saves to the admin save endpoint.
type HTTPSaveClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSaveClient creates an HTTPSaveClient for the given base URL.
func NewHTTPSaveClient(baseURL string, client *http.Client) *HTTPSaveClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSaveClient{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

// Save posts the request and maps the response to the failure taxonomy.
func (c *HTTPSaveClient) Save(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &SaveError{Kind: FailInvalid, Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/admin/api/posts/save", bytes.NewReader(body))
	if err != nil {
		return nil, &SaveError{Kind: FailUnavailable, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, &SaveError{Kind: FailUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var out SaveResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, &SaveError{Kind: FailUnavailable, Message: err.Error()}
		}
		return &out, nil
	}

	return nil, &SaveError{Kind: kindForStatus(resp.StatusCode), Message: readErrorMessage(resp)}
}

func kindForStatus(status int) FailKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailUnauthorized
	case http.StatusConflict:
		return FailConflict
	case http.StatusNotFound:
		return FailNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return FailInvalid
	}
	return FailUnavailable
}

func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
