package keys

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/templates/helpers"
)

// Page renders the full keys index page.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b writer
		b.open(`<section data-keys-page class="space-y-6">`)

		b.open(`<header class="space-y-1">`)
		b.elem("h1", `class="text-2xl font-semibold text-slate-900"`, data.Title)
		b.elem("p", `class="text-sm text-slate-500"`, data.Description)
		b.close("</header>")

		renderFilterBar(&b, data)
		renderTable(&b, data.Table)

		b.close("</section>")
		return b.flush(w)
	})
}

// Table renders the table fragment swapped in by filter and pager requests.
func Table(data TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b writer
		renderTable(&b, data)
		return b.flush(w)
	})
}

// EditorCell renders the inline editor for one translation cell.
func EditorCell(data EditorData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b writer
		b.open(fmt.Sprintf(`<td id="key-cell-%s" data-editor-cell class="px-4 py-2">`, html.EscapeString(data.KeyID)))

		b.open(fmt.Sprintf(
			`<form data-editor-form hx-post="%s" hx-target="%s" hx-swap="outerHTML" class="flex items-center gap-2">`,
			html.EscapeString(data.CommitPath), html.EscapeString(data.HxTarget)))

		b.raw(fmt.Sprintf(`<input type="hidden" name="key" value="%s"/>`, html.EscapeString(data.FullKey)))

		b.open(fmt.Sprintf(
			`<input type="text" name="value" value="%s" maxlength="250" autofocus data-editor-input`+
				` hx-post="%s" hx-trigger="keyup changed delay:500ms" hx-target="%s" hx-swap="outerHTML" hx-sync="closest form:replace"`+
				` class="w-full rounded-md border border-slate-300 px-2 py-1 text-sm focus:border-brand-500 focus:outline-none"/>`,
			html.EscapeString(data.Value), html.EscapeString(data.InputPath), html.EscapeString(data.HxTarget)))
		b.close("")

		if data.Saving {
			b.elem("span", `data-editor-saving class="text-xs text-slate-400"`, "Saving…")
		}

		b.open(fmt.Sprintf(
			`<button type="button" data-editor-cancel hx-post="%s" hx-target="%s" hx-swap="outerHTML" class="text-xs text-slate-500 hover:text-slate-700">`,
			html.EscapeString(data.CancelPath), html.EscapeString(data.HxTarget)))
		b.raw("Cancel")
		b.close("</button>")

		b.close("</form>")

		if data.Err != "" {
			b.elem("p", `data-editor-error class="mt-1 text-xs text-rose-600"`, data.Err)
		}

		b.close("</td>")
		return b.flush(w)
	})
}

// ValueCell renders the read-only translation cell shown after a commit or
// cancel closes the editor.
func ValueCell(row TableRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b writer
		renderValueCell(&b, row)
		return b.flush(w)
	})
}

func renderFilterBar(b *writer, data PageData) {
	b.open(fmt.Sprintf(
		`<form data-keys-filter hx-get="%s" hx-target="#keys-table" hx-swap="outerHTML" hx-push-url="true"`+
			` hx-trigger="input changed delay:300ms from:find input[name='search'], change from:find input[name='missingOnly']"`+
			` class="flex flex-wrap items-center gap-3">`,
		html.EscapeString(data.TableEndpoint)))

	b.open(fmt.Sprintf(
		`<input type="search" name="search" value="%s" placeholder="Search keys"`+
			` class="w-64 rounded-md border border-slate-300 px-3 py-2 text-sm"/>`,
		html.EscapeString(data.Query.Search)))
	b.close("")

	checked := ""
	if data.Query.MissingOnly {
		checked = " checked"
	}
	b.open(`<label class="flex items-center gap-2 text-sm text-slate-600">`)
	b.raw(fmt.Sprintf(`<input type="checkbox" name="missingOnly" value="true"%s/>`, checked))
	b.raw("Missing only")
	b.close("</label>")

	b.close("</form>")
}

func renderTable(b *writer, data TableData) {
	b.open(`<div id="keys-table" data-keys-table class="space-y-4">`)

	if data.Error != "" {
		b.elem("div", `data-table-error class="rounded-md bg-rose-50 px-4 py-3 text-sm text-rose-700"`, data.Error)
	}

	if len(data.Rows) == 0 {
		if data.EmptyMessage != "" {
			b.elem("p", `data-empty-state class="px-4 py-8 text-center text-sm text-slate-500"`, data.EmptyMessage)
		}
	} else {
		b.open(`<table class="min-w-full divide-y divide-slate-200 text-sm">`)
		b.open(`<thead class="text-left text-xs uppercase tracking-wide text-slate-500">`)
		b.open("<tr>")
		b.elem("th", `class="px-4 py-2"`, "Key")
		b.elem("th", `class="px-4 py-2"`, "Value")
		b.elem("th", `class="px-4 py-2"`, "Updated")
		b.close("</tr>")
		b.close("</thead>")

		b.open(`<tbody class="divide-y divide-slate-100">`)
		for _, row := range data.Rows {
			renderRow(b, row)
		}
		b.close("</tbody>")
		b.close("</table>")
	}

	renderPagination(b, data)
	b.close("</div>")
}

func renderRow(b *writer, row TableRow) {
	b.open(fmt.Sprintf(`<tr data-key-row data-key-id="%s">`, html.EscapeString(row.KeyID)))

	b.open(`<td class="px-4 py-2 font-mono text-xs text-slate-700">`)
	b.raw(html.EscapeString(row.FullKey))
	if row.MachineTranslated {
		b.raw(` <span data-machine-badge class="` + helpers.BadgeClass("warning") + `" title="Machine translated">MT</span>`)
	}
	b.close("</td>")

	renderValueCell(b, row)

	b.open(`<td class="px-4 py-2 text-xs text-slate-500">`)
	if row.UpdatedRelative != "" {
		b.raw(fmt.Sprintf(`<span title="%s">%s</span>`, html.EscapeString(row.UpdatedLabel), html.EscapeString(row.UpdatedRelative)))
	}
	b.close("</td>")

	b.close("</tr>")
}

func renderValueCell(b *writer, row TableRow) {
	b.open(fmt.Sprintf(`<td id="key-cell-%s" data-value-cell class="px-4 py-2">`, html.EscapeString(row.KeyID)))

	b.open(fmt.Sprintf(
		`<button type="button" data-edit-trigger hx-get="%s" hx-target="#key-cell-%s" hx-swap="outerHTML" class="w-full text-left">`,
		html.EscapeString(row.EditPath), html.EscapeString(row.KeyID)))
	if row.Missing {
		b.raw(`<span data-missing-badge class="` + helpers.BadgeClass("danger") + `">Missing</span>`)
	} else {
		b.raw(fmt.Sprintf(`<span class="text-slate-700">%s</span>`, html.EscapeString(row.Value)))
	}
	b.close("</button>")

	b.close("</td>")
}

func renderPagination(b *writer, data TableData) {
	p := data.Pagination
	if len(p.Items) == 0 {
		return
	}

	b.open(`<nav data-pagination aria-label="Pagination" class="flex items-center justify-between px-4">`)

	b.elem("span", `data-pagination-summary class="text-xs text-slate-500"`,
		fmt.Sprintf("Page %d of %d (%d keys)", p.Page, p.TotalPages, p.Total))

	b.open(`<ul class="flex items-center gap-1">`)
	for _, item := range p.Items {
		b.open("<li>")
		if item.Ellipsis {
			b.raw(`<span data-ellipsis class="px-2 text-slate-400">&#8230;</span>`)
		} else if item.Current {
			b.raw(fmt.Sprintf(
				`<span data-page="%d" aria-current="page" class="rounded-md bg-slate-900 px-3 py-1 text-xs font-medium text-white">%d</span>`,
				item.Page, item.Page))
		} else {
			b.raw(fmt.Sprintf(
				`<a data-page="%d" href="%s" hx-get="%s" hx-target="%s" hx-swap="%s" hx-push-url="true" class="rounded-md px-3 py-1 text-xs text-slate-600 hover:bg-slate-100">%d</a>`,
				item.Page,
				html.EscapeString(pageHref(data.BasePath, data.RawQuery, item.Page)),
				html.EscapeString(pageHref(data.FragmentPath, data.RawQuery, item.Page)),
				html.EscapeString(data.HxTarget), html.EscapeString(data.HxSwap),
				item.Page))
		}
		b.close("</li>")
	}
	b.close("</ul>")

	b.close("</nav>")
}

// pageHref rewrites the canonical query string for a specific page, dropping
// the parameter entirely on page one.
func pageHref(path, rawQuery string, page int) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	if page <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}
	if encoded := values.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// writer accumulates HTML fragments; flush writes them in one call.
type writer struct {
	parts []string
}

func (w *writer) open(fragment string) {
	if fragment != "" {
		w.parts = append(w.parts, fragment)
	}
}

func (w *writer) close(fragment string) {
	if fragment != "" {
		w.parts = append(w.parts, fragment)
	}
}

func (w *writer) raw(fragment string) {
	w.parts = append(w.parts, fragment)
}

func (w *writer) elem(tag, attrs, text string) {
	if attrs != "" {
		w.parts = append(w.parts, "<"+tag+" "+attrs+">"+html.EscapeString(text)+"</"+tag+">")
		return
	}
	w.parts = append(w.parts, "<"+tag+">"+html.EscapeString(text)+"</"+tag+">")
}

func (w *writer) flush(out io.Writer) error {
	for _, part := range w.parts {
		if _, err := io.WriteString(out, part); err != nil {
			return err
		}
	}
	return nil
}
