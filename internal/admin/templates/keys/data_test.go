package keys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/listparams"
)

func pagerShape(items []PageItem) []int {
	shape := make([]int, 0, len(items))
	for _, item := range items {
		if item.Ellipsis {
			shape = append(shape, -1)
			continue
		}
		shape = append(shape, item.Page)
	}
	return shape
}

func TestBuildPaginationShowsAllPagesWhenFew(t *testing.T) {
	t.Parallel()

	p := BuildPagination(3, 10, 50)

	require.Equal(t, 5, p.TotalPages)
	require.Equal(t, []int{1, 2, 3, 4, 5}, pagerShape(p.Items))
	require.True(t, p.Items[2].Current)
	require.Equal(t, 2, *p.Prev)
	require.Equal(t, 4, *p.Next)
}

func TestBuildPaginationCollapsesMiddlePages(t *testing.T) {
	t.Parallel()

	p := BuildPagination(5, 10, 100)

	require.Equal(t, 10, p.TotalPages)
	require.Equal(t, []int{1, -1, 4, 5, 6, -1, 10}, pagerShape(p.Items))
	require.True(t, p.Items[3].Current)
}

func TestBuildPaginationEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		page  int
		shape []int
	}{
		{name: "first page", page: 1, shape: []int{1, 2, -1, 10}},
		{name: "second page", page: 2, shape: []int{1, 2, 3, -1, 10}},
		{name: "third page", page: 3, shape: []int{1, 2, 3, 4, -1, 10}},
		{name: "second to last", page: 9, shape: []int{1, -1, 8, 9, 10}},
		{name: "last page", page: 10, shape: []int{1, -1, 9, 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := BuildPagination(tc.page, 10, 100)
			require.Equal(t, tc.shape, pagerShape(p.Items))
		})
	}
}

func TestBuildPaginationSinglePageHasNoItems(t *testing.T) {
	t.Parallel()

	p := BuildPagination(1, 50, 12)

	require.Equal(t, 1, p.TotalPages)
	require.Empty(t, p.Items, "pager renders only when results span multiple pages")
	require.Nil(t, p.Prev)
	require.Nil(t, p.Next)
}

func TestBuildPaginationClampsOutOfRangePage(t *testing.T) {
	t.Parallel()

	p := BuildPagination(40, 10, 35)

	require.Equal(t, 4, p.TotalPages)
	require.Equal(t, 4, p.Page)
	require.Nil(t, p.Next)
}

func TestQueryStateFrom(t *testing.T) {
	t.Parallel()

	params := listparams.New().WithSearchValue("home").WithMissingOnly(true)
	state := QueryStateFrom(params)

	require.Equal(t, "home", state.Search)
	require.True(t, state.MissingOnly)
	require.Equal(t, 1, state.Page, "changing filters resets to the first page")
	require.True(t, state.HasFilters)

	state = QueryStateFrom(listparams.New())
	require.False(t, state.HasFilters)
	require.Equal(t, listparams.DefaultPageSize, state.PageSize)
}

func TestTablePayload(t *testing.T) {
	t.Parallel()

	value := "Welcome"
	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	result := keysview.ListResult{
		Rows: []keysview.Row{
			{KeyID: "key-1", FullKey: "app.home.title", Value: &value, UpdatedAt: &updated},
			{KeyID: "key-2", FullKey: "app.home.subtitle", IsMachineTranslated: true},
		},
		Metadata: keysview.Metadata{Total: 120},
	}
	state := QueryStateFrom(listparams.New())

	table := TablePayload("/admin", "proj-1", "fr", state, result, "")

	require.Equal(t, "/admin/projects/proj-1/keys/fr", table.BasePath)
	require.Equal(t, "/admin/projects/proj-1/keys/fr/table", table.FragmentPath)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "Welcome", table.Rows[0].Value)
	require.False(t, table.Rows[0].Missing)
	require.NotEmpty(t, table.Rows[0].UpdatedLabel)
	require.True(t, table.Rows[1].Missing)
	require.True(t, table.Rows[1].MachineTranslated)
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-2?key=app.home.subtitle", table.Rows[1].EditPath)
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1?key=app.home.title&value=Welcome", table.Rows[0].EditPath)
	require.Empty(t, table.EmptyMessage)
	require.Equal(t, 120, table.Pagination.Total)
	require.Equal(t, 3, table.Pagination.TotalPages)
}

func TestTablePayloadEmptyStates(t *testing.T) {
	t.Parallel()

	state := QueryStateFrom(listparams.New())
	table := TablePayload("/admin", "proj-1", "", state, keysview.ListResult{}, "")
	require.Equal(t, "This project has no translation keys yet.", table.EmptyMessage)

	filtered := QueryStateFrom(listparams.New().WithSearchValue("nope"))
	table = TablePayload("/admin", "proj-1", "", filtered, keysview.ListResult{}, "")
	require.Equal(t, "No keys match the current filters.", table.EmptyMessage)

	table = TablePayload("/admin", "proj-1", "", state, keysview.ListResult{}, "backend unavailable")
	require.Empty(t, table.EmptyMessage, "errors suppress the empty-state hint")
	require.Equal(t, "backend unavailable", table.Error)
}

func TestEditorPayload(t *testing.T) {
	t.Parallel()

	data := EditorPayload("/admin", "proj-1", "fr", "key-1", "app.home.title", "Bienvenue", "", false)

	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/input", data.InputPath)
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/commit", data.CommitPath)
	require.Equal(t, "/admin/projects/proj-1/keys/fr/edit/key-1/cancel", data.CancelPath)
	require.Equal(t, "#key-cell-key-1", data.HxTarget)
	require.Equal(t, "Bienvenue", data.Value)
}
