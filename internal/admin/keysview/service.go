package keysview

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotConfigured indicates that the keys view service dependency has not been wired.
var ErrNotConfigured = errors.New("keysview service not configured")

// Query narrows one page of the keys list view.
type Query struct {
	Limit       int
	Offset      int
	Search      string
	MissingOnly bool
}

// Row is one key joined with a single locale's value. A nil Value marks a
// missing translation.
type Row struct {
	KeyID               string     `json:"keyId"`
	FullKey             string     `json:"fullKey"`
	Value               *string    `json:"value"`
	IsMachineTranslated bool       `json:"isMachineTranslated"`
	UpdatedAt           *time.Time `json:"updatedAt"`
}

// Metadata carries the unpaginated row count for the current filters.
type Metadata struct {
	Total int `json:"total"`
}

// ListResult is one page of the joined view plus its metadata.
type ListResult struct {
	Rows     []Row
	Metadata Metadata
}

// UpdateRequest writes one (key, locale) translation cell. A nil Value clears
// the stored translation.
type UpdateRequest struct {
	ProjectID string
	KeyID     string
	Locale    string
	Value     *string
}

// Service is the admin UI's boundary to the keys data. Implementations talk
// to the backend API; tests substitute StaticService.
type Service interface {
	// ListDefaultView lists keys joined with the project's default locale.
	ListDefaultView(ctx context.Context, token, projectID string, q Query) (ListResult, error)
	// ListPerLanguageView lists keys joined with the requested locale.
	ListPerLanguageView(ctx context.Context, token, projectID, locale string, q Query) (ListResult, error)
	// UpdateTranslation writes one translation cell. Returned error messages
	// are human-readable and surfaced to the editor inline.
	UpdateTranslation(ctx context.Context, token string, req UpdateRequest) error
}

// StaticService backs tests and local development with an in-memory view.
// Values are keyed by locale then key id; the zero locale key "" holds the
// default view.
type StaticService struct {
	Keys    map[string]string            // key id -> full key
	Values  map[string]map[string]string // locale -> key id -> value
	Updates []UpdateRequest
	Err     error
}

// NewStaticService constructs an empty StaticService.
func NewStaticService() *StaticService {
	return &StaticService{
		Keys:   map[string]string{},
		Values: map[string]map[string]string{},
	}
}

// ListDefaultView implements Service.
func (s *StaticService) ListDefaultView(_ context.Context, _, _ string, q Query) (ListResult, error) {
	return s.list("", q)
}

// ListPerLanguageView implements Service.
func (s *StaticService) ListPerLanguageView(_ context.Context, _, _, locale string, q Query) (ListResult, error) {
	return s.list(locale, q)
}

// UpdateTranslation implements Service by recording the request.
func (s *StaticService) UpdateTranslation(_ context.Context, _ string, req UpdateRequest) error {
	if s.Err != nil {
		return s.Err
	}
	s.Updates = append(s.Updates, req)
	locale := req.Locale
	values, ok := s.Values[locale]
	if !ok {
		values = map[string]string{}
		s.Values[locale] = values
	}
	if req.Value == nil {
		delete(values, req.KeyID)
	} else {
		values[req.KeyID] = *req.Value
	}
	return nil
}

func (s *StaticService) list(locale string, q Query) (ListResult, error) {
	if s.Err != nil {
		return ListResult{}, s.Err
	}

	values := s.Values[locale]
	search := strings.ToLower(strings.TrimSpace(q.Search))

	rows := make([]Row, 0, len(s.Keys))
	for keyID, fullKey := range s.Keys {
		var value *string
		if v, ok := values[keyID]; ok {
			v := v
			value = &v
		}
		if q.MissingOnly && value != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(fullKey), search) {
			continue
		}
		rows = append(rows, Row{KeyID: keyID, FullKey: fullKey, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].FullKey < rows[j].FullKey })

	total := len(rows)
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return ListResult{Rows: rows, Metadata: Metadata{Total: total}}, nil
}
