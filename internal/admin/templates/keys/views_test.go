package keys

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/a-h/templ"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/listparams"
)

func renderComponent(t *testing.T, component templ.Component) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, component.Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

// renderCellFragment wraps a cell component in table scaffolding; the HTML
// parser discards a td element that appears outside a table.
func renderCellFragment(t *testing.T, component templ.Component) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, component.Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(
		[]byte("<table><tbody><tr>" + buf.String() + "</tr></tbody></table>")))
	require.NoError(t, err)
	return doc
}

func sampleTable(t *testing.T, total int, params listparams.Params) TableData {
	t.Helper()

	value := "Welcome"
	result := keysview.ListResult{
		Rows: []keysview.Row{
			{KeyID: "key-1", FullKey: "app.home.title", Value: &value},
			{KeyID: "key-2", FullKey: "app.home.subtitle"},
		},
		Metadata: keysview.Metadata{Total: total},
	}
	return TablePayload("/admin", "proj-1", "", QueryStateFrom(params), result, "")
}

func TestPageRendersFilterBarAndTable(t *testing.T) {
	t.Parallel()

	params := listparams.New().WithSearchValue("home").WithMissingOnly(true)
	table := sampleTable(t, 2, params)
	page := BuildPageData("/admin", "proj-1", "", QueryStateFrom(params), table)

	doc := renderComponent(t, Page(page))

	require.Equal(t, "Translation keys", doc.Find("h1").Text())

	form := doc.Find("[data-keys-filter]")
	require.Equal(t, 1, form.Length())
	require.Equal(t, "/admin/projects/proj-1/keys/table", form.AttrOr("hx-get", ""))
	require.Equal(t, "home", form.Find("input[name='search']").AttrOr("value", ""))
	_, checked := form.Find("input[name='missingOnly']").Attr("checked")
	require.True(t, checked)

	require.Equal(t, 2, doc.Find("[data-key-row]").Length())
}

func TestPagePerLanguageTitle(t *testing.T) {
	t.Parallel()

	params := listparams.New()
	page := BuildPageData("/admin", "proj-1", "fr", QueryStateFrom(params), TableData{})

	doc := renderComponent(t, Page(page))
	require.Equal(t, "Translations: fr", doc.Find("h1").Text())
}

func TestTableRendersValueAndMissingCells(t *testing.T) {
	t.Parallel()

	doc := renderComponent(t, Table(sampleTable(t, 2, listparams.New())))

	rows := doc.Find("[data-key-row]")
	require.Equal(t, 2, rows.Length())

	filled := doc.Find("#key-cell-key-1")
	require.Contains(t, filled.Text(), "Welcome")
	require.Equal(t, "/admin/projects/proj-1/keys/edit/key-1?key=app.home.title&value=Welcome",
		filled.Find("[data-edit-trigger]").AttrOr("hx-get", ""))

	missing := doc.Find("#key-cell-key-2 [data-missing-badge]")
	require.Equal(t, 1, missing.Length())
	require.Equal(t, "Missing", missing.Text())

	require.Equal(t, 0, doc.Find("[data-pagination]").Length(), "single page of results renders no pager")
}

func TestTableRendersEmptyState(t *testing.T) {
	t.Parallel()

	table := TablePayload("/admin", "proj-1", "", QueryStateFrom(listparams.New()), keysview.ListResult{}, "")
	doc := renderComponent(t, Table(table))

	empty := doc.Find("[data-empty-state]")
	require.Equal(t, 1, empty.Length())
	require.Equal(t, "This project has no translation keys yet.", empty.Text())
	require.Equal(t, 0, doc.Find("table").Length())
}

func TestTableRendersErrorBanner(t *testing.T) {
	t.Parallel()

	table := TablePayload("/admin", "proj-1", "", QueryStateFrom(listparams.New()), keysview.ListResult{}, "backend unavailable")
	doc := renderComponent(t, Table(table))

	require.Equal(t, "backend unavailable", doc.Find("[data-table-error]").Text())
	require.Equal(t, 0, doc.Find("[data-empty-state]").Length())
}

func TestTablePaginationCollapsesWithEllipses(t *testing.T) {
	t.Parallel()

	params := listparams.New().WithPageSize(10).WithPage(5)
	doc := renderComponent(t, Table(sampleTable(t, 100, params)))

	pager := doc.Find("[data-pagination]")
	require.Equal(t, 1, pager.Length())
	require.Equal(t, 2, pager.Find("[data-ellipsis]").Length())

	current := pager.Find("[aria-current='page']")
	require.Equal(t, "5", current.Text())

	first := pager.Find("a[data-page='1']")
	require.Equal(t, 1, first.Length())
	require.Equal(t, "/admin/projects/proj-1/keys?pageSize=10", first.AttrOr("href", ""), "page one drops the page parameter")

	last := pager.Find("a[data-page='10']")
	require.Contains(t, last.AttrOr("hx-get", ""), "/admin/projects/proj-1/keys/table?")
	require.Contains(t, last.AttrOr("hx-get", ""), "page=10")
	require.Contains(t, last.AttrOr("hx-get", ""), "pageSize=10", "pager links preserve filter state")
	require.Equal(t, "#keys-table", last.AttrOr("hx-target", ""))
}

func TestEditorCellRendersForm(t *testing.T) {
	t.Parallel()

	data := EditorPayload("/admin", "proj-1", "fr", "key-1", "app.home.title", "Bienvenue", "", false)
	doc := renderCellFragment(t, EditorCell(data))

	cell := doc.Find("[data-editor-cell]")
	require.Equal(t, 1, cell.Length())

	form := cell.Find("[data-editor-form]")
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/commit", form.AttrOr("hx-post", ""))

	input := form.Find("[data-editor-input]")
	require.Equal(t, "Bienvenue", input.AttrOr("value", ""))
	require.Equal(t, "250", input.AttrOr("maxlength", ""))
	require.Equal(t, "keyup changed delay:500ms", input.AttrOr("hx-trigger", ""))
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/input", input.AttrOr("hx-post", ""))

	cancel := form.Find("[data-editor-cancel]")
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/cancel", cancel.AttrOr("hx-post", ""))

	require.Equal(t, 0, doc.Find("[data-editor-error]").Length())
}

func TestEditorCellRendersInlineError(t *testing.T) {
	t.Parallel()

	data := EditorPayload("/admin", "proj-1", "fr", "key-1", "app.home.title", "too long", "value must be at most 250 characters", false)
	doc := renderCellFragment(t, EditorCell(data))

	require.Equal(t, "value must be at most 250 characters", doc.Find("[data-editor-error]").Text())
}
