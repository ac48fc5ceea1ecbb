package httpserver_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/testutil"
)

type tokenAuthenticator struct {
	Token string
}

func (t *tokenAuthenticator) Authenticate(_ *http.Request, token string) (*middleware.User, error) {
	if token != t.Token {
		return nil, middleware.ErrUnauthorized
	}
	return &middleware.User{
		UID:   "tester",
		Email: "tester@example.com",
		Token: token,
	}, nil
}

func seededService() *keysview.StaticService {
	svc := keysview.NewStaticService()
	svc.Keys["key-1"] = "app.home.title"
	svc.Keys["key-2"] = "app.home.subtitle"
	svc.Values[""] = map[string]string{"key-1": "Welcome", "key-2": "Get started"}
	svc.Values["fr"] = map[string]string{"key-1": "Bienvenue"}
	return svc
}

func get(t *testing.T, url, token string, htmx bool) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postForm(t *testing.T, url, token string, form url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestKeysPageRedirectsWithoutAuth(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.URL + "/admin/projects/proj-1/keys")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestKeysPageRendersForAuthenticatedUser(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(seededService()))

	resp := get(t, ts.URL+"/admin/projects/proj-1/keys", auth.Token, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, body)

	require.Equal(t, "Translation keys", doc.Find("h1").First().Text())
	require.Equal(t, 2, doc.Find("[data-key-row]").Length())
}

func TestKeysTableFragmentRequiresHTMX(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(seededService()))

	resp := get(t, ts.URL+"/admin/projects/proj-1/keys/table", auth.Token, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestKeysTableFragmentPushesCanonicalURL(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(seededService()))

	resp := get(t, ts.URL+"/admin/projects/proj-1/keys/table?search=home&missingOnly=true", auth.Token, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/admin/projects/proj-1/keys?missingOnly=true&search=home", resp.Header.Get("HX-Push-Url"))
}

func TestPerLanguageViewShowsMissingBadge(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(seededService()))

	resp := get(t, ts.URL+"/admin/projects/proj-1/keys/fr", auth.Token, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, body)

	require.Equal(t, "Translations: fr", doc.Find("h1").First().Text())
	require.Equal(t, 1, doc.Find("[data-missing-badge]").Length(), "app.home.subtitle has no fr value")
}

func TestInlineEditCommitFlow(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	svc := seededService()
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(svc))

	base := ts.URL + "/admin/projects/proj-1/keys/fr/edit/key-1"

	resp := get(t, base+"?key=app.home.title&value=Bienvenue", auth.Token, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "data-editor-form")
	require.Contains(t, string(body), `value="Bienvenue"`)

	form := url.Values{"key": {"app.home.title"}, "value": {"  Bonjour  "}}
	resp = postForm(t, base+"/commit", auth.Token, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "data-value-cell", "successful commit closes the editor")
	require.Contains(t, string(body), "Bonjour")

	require.Len(t, svc.Updates, 1)
	update := svc.Updates[0]
	require.Equal(t, "proj-1", update.ProjectID)
	require.Equal(t, "key-1", update.KeyID)
	require.Equal(t, "fr", update.Locale)
	require.NotNil(t, update.Value)
	require.Equal(t, "Bonjour", *update.Value, "committed value is trimmed")
}

func TestInlineEditValidationKeepsEditorOpen(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	svc := seededService()
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(svc))

	base := ts.URL + "/admin/projects/proj-1/keys/fr/edit/key-1"
	get(t, base+"?key=app.home.title&value=Bienvenue", auth.Token, true)

	form := url.Values{"key": {"app.home.title"}, "value": {"line\nbreak"}}
	resp := postForm(t, base+"/commit", auth.Token, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "data-editor-error")
	require.Contains(t, string(body), "must not contain line breaks")
	require.Empty(t, svc.Updates, "invalid input is never saved")
}

func TestInlineEditCancelRestoresStoredValue(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	svc := seededService()
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(svc))

	base := ts.URL + "/admin/projects/proj-1/keys/fr/edit/key-1"
	get(t, base+"?key=app.home.title&value=Bienvenue", auth.Token, true)

	form := url.Values{"key": {"app.home.title"}, "value": {"typed but abandoned"}}
	resp := postForm(t, base+"/cancel", auth.Token, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "data-value-cell")
	require.Contains(t, string(body), "Bienvenue")
	require.NotContains(t, string(body), "abandoned")
	require.Empty(t, svc.Updates)
}

func TestEditFragmentHiddenFromDirectNavigation(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithKeysService(seededService()))

	resp := get(t, ts.URL+"/admin/projects/proj-1/keys/fr/edit/key-1?key=app.home.title", auth.Token, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
