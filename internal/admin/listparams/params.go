package listparams

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the first page; malformed page input falls back here.
	DefaultPage = 1
	// DefaultPageSize matches the backend's default list page size.
	DefaultPageSize = 50
)

// Params is the canonical filter and pagination state for the keys list
// views. It round-trips through the query string so the URL stays the single
// source of truth for the table chrome.
type Params struct {
	SearchValue string
	MissingOnly bool
	Page        int
	PageSize    int
}

// New returns the default state: no filters, first page, default page size.
func New() Params {
	return Params{Page: DefaultPage, PageSize: DefaultPageSize}
}

// FromQuery derives the state from a query string. Parsing never fails;
// malformed or missing values fall back to their defaults.
func FromQuery(values url.Values) Params {
	p := New()
	if values == nil {
		return p
	}

	p.SearchValue = strings.TrimSpace(values.Get("search"))
	p.MissingOnly = values.Get("missingOnly") == "true"
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page >= 1 {
		p.Page = page
	}
	if size, err := strconv.Atoi(values.Get("pageSize")); err == nil && size >= 1 {
		p.PageSize = size
	}
	return p
}

// WithSearchValue returns the state with the search filter replaced and the
// page reset to the first page.
func (p Params) WithSearchValue(value string) Params {
	p.SearchValue = strings.TrimSpace(value)
	p.Page = DefaultPage
	return p
}

// WithMissingOnly returns the state with the missing-only filter replaced and
// the page reset to the first page.
func (p Params) WithMissingOnly(missingOnly bool) Params {
	p.MissingOnly = missingOnly
	p.Page = DefaultPage
	return p
}

// WithPage returns the state positioned on the given page. The value is taken
// verbatim; callers clamp against the total where needed.
func (p Params) WithPage(page int) Params {
	p.Page = page
	return p
}

// WithPageSize returns the state with a new page size and the page reset to
// the first page.
func (p Params) WithPageSize(size int) Params {
	p.PageSize = size
	p.Page = DefaultPage
	return p
}

// Encode serialises the state back into query values, omitting defaults so
// canonical URLs stay short.
func (p Params) Encode() url.Values {
	values := url.Values{}
	if p.SearchValue != "" {
		values.Set("search", p.SearchValue)
	}
	if p.MissingOnly {
		values.Set("missingOnly", "true")
	}
	if p.Page != DefaultPage {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize != DefaultPageSize {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return values
}

// Offset returns the zero-based item offset of the current page.
func (p Params) Offset() int {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	size := p.Limit()
	return (page - 1) * size
}

// Limit returns the effective page size.
func (p Params) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}
