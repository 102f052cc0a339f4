package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is the single error kind surfaced by the transport layer.
// Network failures, non-2xx statuses and malformed response bodies all
// normalize to it so callers handle one shape.
type APIError struct {
	// Message is the human-readable failure description.
	Message string

	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// IsAPIError reports whether err (or any error in its chain) is an
// APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// API is the backend surface consumed by the reconciliation controller
// and the enrichment poller. Client is the production implementation.
type API interface {
	Health(ctx context.Context) (*HealthResponse, error)
	ListEmails(ctx context.Context, opts ListOptions) (*EmailBatch, error)
	UnreadEmails(ctx context.Context, limit int) (*EmailBatch, error)
	ImportantEmails(ctx context.Context, limit int) (*EmailBatch, error)
	SearchEmails(ctx context.Context, query string, limit int) (*EmailBatch, error)
	GetEmail(ctx context.Context, id string) (*WireEmail, error)
	ListDrafts(ctx context.Context) (*DraftList, error)
	CreateDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error)
	CreateAgentDrafts(ctx context.Context, req AgentDraftRequest) (*DraftResponse, error)
	TriggerFetch(ctx context.Context) (*FetchResponse, error)
	SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error)
	LookupProfile(ctx context.Context, email string) (*ProfileResponse, error)
	RequestProfile(ctx context.Context, req ProfileRequest) (*ProfileResponse, error)
}

// Client is a thin HTTP client for the mail backend REST API. It handles
// JSON marshaling and normalizes every failure into an APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a new backend client. The baseURL should be the root
// URL of the backend service (e.g. http://localhost:8002).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an HTTP POST request with a JSON body and unmarshals the
// JSON response.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do is the core HTTP method that builds the request and normalizes
// network failures, non-2xx statuses and decode failures into APIError.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{
				Message: fmt.Sprintf("encoding request for %s %s: %v", method, path, err),
			}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return &APIError{
			Message: fmt.Sprintf("creating request %s %s: %v", method, path, err),
		}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			Message: fmt.Sprintf("requesting %s %s: %v", method, path, err),
		}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return &APIError{
			Message:    fmt.Sprintf("reading response from %s %s: %v", method, path, readErr),
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &detail) == nil && detail.Detail != "" {
			msg = detail.Detail
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Message: msg, StatusCode: resp.StatusCode}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return &APIError{
			Message:    fmt.Sprintf("decoding response from %s %s: %v", method, path, err),
			StatusCode: resp.StatusCode,
		}
	}

	return nil
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEmails fetches a windowed batch of emails.
func (c *Client) ListEmails(ctx context.Context, opts ListOptions) (*EmailBatch, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Days > 0 {
		q.Set("days", strconv.Itoa(opts.Days))
	}
	if opts.IncludeBody {
		q.Set("include_body", "true")
	}

	path := "/api/emails"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out EmailBatch
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnreadEmails fetches only unread emails.
func (c *Client) UnreadEmails(ctx context.Context, limit int) (*EmailBatch, error) {
	var out EmailBatch
	if err := c.get(ctx, limitedPath("/api/emails/unread", limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportantEmails fetches only emails the backend marked important.
func (c *Client) ImportantEmails(ctx context.Context, limit int) (*EmailBatch, error) {
	var out EmailBatch
	if err := c.get(ctx, limitedPath("/api/emails/important", limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchEmails runs a free-text query against the generic list endpoint.
func (c *Client) SearchEmails(ctx context.Context, query string, limit int) (*EmailBatch, error) {
	return c.ListEmails(ctx, ListOptions{Query: query, Limit: limit, IncludeBody: true})
}

// GetEmail fetches a single email with its full draft list.
func (c *Client) GetEmail(ctx context.Context, id string) (*WireEmail, error) {
	var out WireEmail
	if err := c.get(ctx, "/api/emails/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDrafts fetches all saved agent drafts.
func (c *Client) ListDrafts(ctx context.Context) (*DraftList, error) {
	var out DraftList
	if err := c.get(ctx, "/api/drafts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDraft creates a single manual draft on the backend.
func (c *Client) CreateDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	var out DraftResponse
	if err := c.post(ctx, "/api/emails/draft", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAgentDrafts asks the backend agent to generate reply drafts for
// the given batch of emails.
func (c *Client) CreateAgentDrafts(ctx context.Context, req AgentDraftRequest) (*DraftResponse, error) {
	var out DraftResponse
	if err := c.post(ctx, "/api/emails/agent-draft", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerFetch starts a backend-side mail ingestion pass.
func (c *Client) TriggerFetch(ctx context.Context) (*FetchResponse, error) {
	var out FetchResponse
	if err := c.post(ctx, "/api/emails/fetch", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendEmail sends a message through the backend.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	var out SendEmailResponse
	if err := c.post(ctx, "/api/emails/send", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupProfile fetches stored sender details by address.
func (c *Client) LookupProfile(ctx context.Context, email string) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.get(ctx, "/api/users/"+url.PathEscape(strings.ToLower(email)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestProfile asks the backend to research a sender, returning either
// stored details or an "initiated" acknowledgement.
func (c *Client) RequestProfile(ctx context.Context, req ProfileRequest) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.post(ctx, "/api/users/details", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// limitedPath appends a limit query parameter when positive.
func limitedPath(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}
