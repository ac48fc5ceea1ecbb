package keys

import (
	"net/url"
	"strings"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/listparams"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/templates/helpers"
)

// PageData represents the payload for the translation keys index page.
type PageData struct {
	Title         string
	Description   string
	ProjectID     string
	Locale        string
	TableEndpoint string
	Query         QueryState
	Table         TableData
}

// QueryState captures current filter and view state.
type QueryState struct {
	Search      string
	MissingOnly bool
	Page        int
	PageSize    int
	RawQuery    string
	HasFilters  bool
}

// TableData contains the fragment payload for the keys table.
type TableData struct {
	BasePath     string
	FragmentPath string
	HxTarget     string
	HxSwap       string
	RawQuery     string
	Rows         []TableRow
	Error        string
	EmptyMessage string
	Pagination   Pagination
}

// TableRow represents a single key row.
type TableRow struct {
	KeyID             string
	FullKey           string
	Value             string
	Missing           bool
	MachineTranslated bool
	UpdatedLabel      string
	UpdatedRelative   string
	EditPath          string
}

// Pagination describes the pager rendered below the table.
type Pagination struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Prev       *int
	Next       *int
	Items      []PageItem
}

// PageItem is one pager control: either a page number or an ellipsis gap.
type PageItem struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// EditorData is the payload for the inline-edit cell fragment.
type EditorData struct {
	KeyID      string
	FullKey    string
	Locale     string
	Value      string
	Err        string
	Saving     bool
	InputPath  string
	CommitPath string
	CancelPath string
	HxTarget   string
}

// maxVisiblePages is the pager width before gaps collapse into ellipses.
const maxVisiblePages = 7

// QueryStateFrom converts the parsed list parameters into template state.
func QueryStateFrom(params listparams.Params) QueryState {
	return QueryState{
		Search:      params.SearchValue,
		MissingOnly: params.MissingOnly,
		Page:        params.Page,
		PageSize:    params.PageSize,
		RawQuery:    params.Encode().Encode(),
		HasFilters:  params.SearchValue != "" || params.MissingOnly,
	}
}

// BuildPageData assembles the full SSR payload for the keys page.
func BuildPageData(basePath, projectID, locale string, state QueryState, table TableData) PageData {
	title := "Translation keys"
	description := "Default-language view of every key in the project."
	if locale != "" {
		title = "Translations: " + locale
		description = "Per-language view for the " + locale + " locale."
	}

	return PageData{
		Title:         title,
		Description:   description,
		ProjectID:     projectID,
		Locale:        locale,
		TableEndpoint: keysPath(basePath, projectID, locale) + "/table",
		Query:         state,
		Table:         table,
	}
}

// TablePayload prepares the table fragment data.
func TablePayload(basePath, projectID, locale string, state QueryState, result keysview.ListResult, errMsg string) TableData {
	rows := toTableRows(basePath, projectID, locale, result.Rows)
	empty := ""
	if errMsg == "" && len(rows) == 0 {
		if state.HasFilters {
			empty = "No keys match the current filters."
		} else {
			empty = "This project has no translation keys yet."
		}
	}

	base := keysPath(basePath, projectID, locale)

	return TableData{
		BasePath:     base,
		FragmentPath: base + "/table",
		HxTarget:     "#keys-table",
		HxSwap:       "outerHTML",
		RawQuery:     state.RawQuery,
		Rows:         rows,
		Error:        errMsg,
		EmptyMessage: empty,
		Pagination:   BuildPagination(state.Page, state.PageSize, result.Metadata.Total),
	}
}

// BuildPagination computes the pager model. Page links collapse into
// first/last plus the current page's neighbours once the page count
// exceeds maxVisiblePages; no items are produced for a single page.
func BuildPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = listparams.DefaultPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	p := Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
	if page > 1 {
		prev := page - 1
		p.Prev = &prev
	}
	if page < totalPages {
		next := page + 1
		p.Next = &next
	}
	if totalPages > 1 {
		p.Items = pageItems(page, totalPages)
	}
	return p
}

func pageItems(current, totalPages int) []PageItem {
	if totalPages <= maxVisiblePages {
		items := make([]PageItem, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			items = append(items, PageItem{Page: n, Current: n == current})
		}
		return items
	}

	items := []PageItem{{Page: 1, Current: current == 1}}

	lo := current - 1
	if lo < 2 {
		lo = 2
	}
	hi := current + 1
	if hi > totalPages-1 {
		hi = totalPages - 1
	}

	if lo > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for n := lo; n <= hi; n++ {
		items = append(items, PageItem{Page: n, Current: n == current})
	}
	if hi < totalPages-1 {
		items = append(items, PageItem{Ellipsis: true})
	}

	items = append(items, PageItem{Page: totalPages, Current: current == totalPages})
	return items
}

// EditorPayload prepares the inline-edit cell fragment.
func EditorPayload(basePath, projectID, locale, keyID, fullKey, value, errMsg string, saving bool) EditorData {
	base := keysPath(basePath, projectID, locale)
	cell := base + "/edit/" + keyID

	return EditorData{
		KeyID:      keyID,
		FullKey:    fullKey,
		Locale:     locale,
		Value:      value,
		Err:        errMsg,
		Saving:     saving,
		InputPath:  cell + "/input",
		CommitPath: cell + "/commit",
		CancelPath: cell + "/cancel",
		HxTarget:   "#key-cell-" + keyID,
	}
}

func toTableRows(basePath, projectID, locale string, rows []keysview.Row) []TableRow {
	result := make([]TableRow, 0, len(rows))
	base := keysPath(basePath, projectID, locale)
	for _, row := range rows {
		item := TableRow{
			KeyID:             row.KeyID,
			FullKey:           row.FullKey,
			Missing:           row.Value == nil,
			MachineTranslated: row.IsMachineTranslated,
		}
		// The open-editor endpoint receives the row's current state so it
		// can seed the edit slot without refetching the list.
		editQuery := url.Values{"key": {row.FullKey}}
		if row.Value != nil {
			item.Value = *row.Value
			editQuery.Set("value", *row.Value)
		}
		item.EditPath = base + "/edit/" + row.KeyID + "?" + editQuery.Encode()
		if row.UpdatedAt != nil {
			item.UpdatedLabel = helpers.Date(*row.UpdatedAt, "2006-01-02 15:04")
			item.UpdatedRelative = helpers.Relative(*row.UpdatedAt)
		}
		result = append(result, item)
	}
	return result
}

func keysPath(base, projectID, locale string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "/admin"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimRight(base, "/")
	}
	path := base + "/projects/" + projectID + "/keys"
	if locale != "" {
		path += "/" + locale
	}
	return path
}
