package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/dmitrijs2005/studysync/internal/logging"
	"github.com/google/uuid"
)

const maxErrorBody = 64 << 10

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the API rooted at baseURL. Endpoint
// paths are resolved relative to it, so a base path such as "/api/v1/" is
// preserved.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// endpoint resolves an already escaped relative path against the base URL.
func (c *HTTPClient) endpoint(path string, q url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	u := c.baseURL.ResolveReference(ref)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// do sends one request and returns the response for 2xx statuses. Any other
// status is turned into *APIError and the body is closed.
func (c *HTTPClient) do(ctx context.Context, method, path string, q url.Values, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	target, err := c.endpoint(path, q)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if tok := BearerToken(ctx); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrNetwork, method, path, err)
	}

	c.log.Debug(ctx, "backend call",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, NewAPIError(resp.StatusCode, parseDetail(raw))
}

// doJSON runs do and decodes a JSON response into out. A nil out or an empty
// body skips decoding.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) error {
	resp, err := c.do(ctx, method, path, q, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s %s: %v", common.ErrServer, method, path, err)
	}
	return nil
}

func pageQuery(p models.PageRequest) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return q
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "auth/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CompleteProfile(ctx context.Context, data models.ProfileUpdate) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodPost, "auth/complete-profile", nil, data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListConversations(ctx context.Context, page models.PageRequest) (*models.Page[models.Conversation], error) {
	var p models.Page[models.Conversation]
	if err := c.doJSON(ctx, http.MethodGet, "conversations", pageQuery(page), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateConversation(ctx context.Context, data models.NewConversation) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.doJSON(ctx, http.MethodPost, "conversations", nil, data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *HTTPClient) GetConversation(ctx context.Context, id string) (*models.ConversationDetail, error) {
	var d models.ConversationDetail
	if err := c.doJSON(ctx, http.MethodGet, "conversations/"+url.PathEscape(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "conversations/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) ListProgress(ctx context.Context, page models.PageRequest) (*models.Page[models.ProgressEntry], error) {
	var p models.Page[models.ProgressEntry]
	if err := c.doJSON(ctx, http.MethodGet, "users/me/progress", pageQuery(page), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ProgressStats(ctx context.Context) (*models.ProgressStats, error) {
	var s models.ProgressStats
	if err := c.doJSON(ctx, http.MethodGet, "users/me/progress/stats", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Recommendations accepts either a bare JSON array or the list envelope.
func (c *HTTPClient) Recommendations(ctx context.Context, limit int) ([]models.Recommendation, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "users/me/progress/recommendations", q, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []models.Recommendation
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: decode recommendations: %v", common.ErrServer, err)
		}
		return out, nil
	}
	var env models.Page[models.Recommendation]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode recommendations: %v", common.ErrServer, err)
	}
	return env.Items, nil
}

// MarkUnderstood returns the updated entry, or nil when the backend answers
// without a body.
func (c *HTTPClient) MarkUnderstood(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error) {
	if u.Signals == nil {
		u.Signals = []string{}
	}
	var raw json.RawMessage
	path := "users/me/progress/" + url.PathEscape(code) + "/understood"
	if err := c.doJSON(ctx, http.MethodPut, path, nil, u, &raw); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var e models.ProgressEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: decode progress entry: %v", common.ErrServer, err)
	}
	return &e, nil
}

func (c *HTTPClient) GenerateExam(ctx context.Context, req models.ExamRequest) (*models.ExamRecord, error) {
	var rec models.ExamRecord
	if err := c.doJSON(ctx, http.MethodPost, "exams/generate", nil, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListExams(ctx context.Context, page models.PageRequest) (*models.Page[models.ExamListItem], error) {
	var p models.Page[models.ExamListItem]
	if err := c.doJSON(ctx, http.MethodGet, "exams/", pageQuery(page), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ExamAvailability(ctx context.Context) (models.ExamAvailability, error) {
	var a models.ExamAvailability
	if err := c.doJSON(ctx, http.MethodGet, "exams/stats/available", nil, nil, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *HTTPClient) DeleteExam(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "exams/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) DownloadExam(ctx context.Context, id string) (*models.ExamDownload, error) {
	resp, err := c.do(ctx, http.MethodGet, "exams/"+url.PathEscape(id)+"/download", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read exam %s: %v", common.ErrNetwork, id, err)
	}

	return &models.ExamDownload{
		ExamID:      id,
		FileName:    attachmentName(resp.Header.Get("Content-Disposition"), id),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func attachmentName(disposition, id string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	return "exam-" + id
}
