package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the client omits or mangles the page parameter.
	DefaultPage = 1
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 50
	// DefaultMaxPageSize caps the supported pageSize to prevent unbounded queries.
	DefaultMaxPageSize = 100

	maxSearchLength = 256
)

// Params bundles the list-view pagination and filter values extracted from a
// request. Malformed input never fails parsing; it falls back to defaults.
type Params struct {
	Page        int
	PageSize    int
	Search      string
	MissingOnly bool
}

// Options control the page-size bounds applied while parsing.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) Params {
	if r == nil {
		return Parse(nil, opts)
	}
	return Parse(r.URL.Query(), opts)
}

// Parse consumes the provided query values and returns the normalised Params.
func Parse(values url.Values, opts Options) Params {
	if values == nil {
		values = url.Values{}
	}

	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	params := Params{
		Page:     parsePositiveInt(values.Get("page"), DefaultPage),
		PageSize: parsePositiveInt(values.Get("pageSize"), defaultPageSize),
		Search:   sanitizeSearch(values.Get("search")),
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	params.MissingOnly = parseBool(values.Get("missingOnly"))

	return params
}

// Offset returns the zero-based item offset of the current page.
func (p Params) Offset() int {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return (page - 1) * size
}

// Limit returns the effective page size.
func (p Params) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return value
}

func sanitizeSearch(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > maxSearchLength {
		value = value[:maxSearchLength]
	}
	return value
}
