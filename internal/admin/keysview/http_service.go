package keysview

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
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the backend JSON API.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service that talks to the backend keys API.
// baseURL points at the API root, e.g. "http://localhost:8080/api/v1".
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("keysview: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("keysview: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

// ListDefaultView lists keys joined with the project's default locale.
func (s *HTTPService) ListDefaultView(ctx context.Context, token, projectID string, q Query) (ListResult, error) {
	return s.listKeys(ctx, token, projectID, "", q)
}

// ListPerLanguageView lists keys joined with the requested locale.
func (s *HTTPService) ListPerLanguageView(ctx context.Context, token, projectID, locale string, q Query) (ListResult, error) {
	if strings.TrimSpace(locale) == "" {
		return ListResult{}, errors.New("keysview: locale is required")
	}
	return s.listKeys(ctx, token, projectID, locale, q)
}

// UpdateTranslation writes one translation cell through the backend.
func (s *HTTPService) UpdateTranslation(ctx context.Context, token string, req UpdateRequest) error {
	value := ""
	if req.Value != nil {
		value = *req.Value
	}
	payload := map[string]string{
		"keyId":  req.KeyID,
		"locale": req.Locale,
		"value":  value,
	}

	httpReq, err := s.newJSONRequest(ctx, http.MethodPut, "projects/"+url.PathEscape(req.ProjectID)+"/translations", payload, token)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("keysview: update translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.errorFromResponse(resp)
	}
	return nil
}

func (s *HTTPService) listKeys(ctx context.Context, token, projectID, locale string, q Query) (ListResult, error) {
	if strings.TrimSpace(projectID) == "" {
		return ListResult{}, errors.New("keysview: project id is required")
	}

	query := url.Values{}
	if locale != "" {
		query.Set("locale", locale)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.MissingOnly {
		query.Set("missingOnly", "true")
	}
	if q.Limit > 0 {
		query.Set("pageSize", strconv.Itoa(q.Limit))
		if q.Offset > 0 {
			query.Set("page", strconv.Itoa(q.Offset/q.Limit+1))
		}
	}

	endpoint := "projects/" + url.PathEscape(projectID) + "/keys"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return ListResult{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return ListResult{}, fmt.Errorf("keysview: list keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ListResult{}, s.errorFromResponse(resp)
	}

	var payload struct {
		Data     []Row    `json:"data"`
		Metadata Metadata `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ListResult{}, fmt.Errorf("keysview: decode list response: %w", err)
	}
	return ListResult{Rows: payload.Data, Metadata: payload.Metadata}, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("keysview: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("keysview: encode payload: %w", err)
		}
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	if endpoint == "" {
		return s.base.String()
	}
	base := *s.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return base.String() + endpoint
	}
	return base.ResolveReference(ref).String()
}

// errorFromResponse decodes the backend error envelope and surfaces its
// message verbatim so the UI can show it inline.
func (s *HTTPService) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
			return errors.New(payload.Error.Message)
		}
	}
	return fmt.Errorf("keysview: backend error (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
