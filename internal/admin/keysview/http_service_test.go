package keysview_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
)

func TestHTTPServiceListDefaultView(t *testing.T) {
	t.Parallel()

	var receivedAuth string
	var receivedQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects/proj-1/keys", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		receivedAuth = r.Header.Get("Authorization")
		receivedQuery = map[string]string{}
		for key := range r.URL.Query() {
			receivedQuery[key] = r.URL.Query().Get(key)
		}

		value := "Welcome"
		payload := map[string]any{
			"data": []keysview.Row{
				{KeyID: "key-1", FullKey: "app.home.title", Value: &value},
				{KeyID: "key-2", FullKey: "app.home.subtitle"},
			},
			"metadata": map[string]int{"total": 12},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(ts.Close)

	svc, err := keysview.NewHTTPService(ts.URL+"/api/v1", ts.Client())
	require.NoError(t, err)

	result, err := svc.ListDefaultView(context.Background(), "test-token", "proj-1", keysview.Query{
		Limit:       10,
		Offset:      20,
		Search:      "home",
		MissingOnly: true,
	})
	require.NoError(t, err)

	require.Equal(t, "Bearer test-token", receivedAuth)
	require.Equal(t, "home", receivedQuery["search"])
	require.Equal(t, "true", receivedQuery["missingOnly"])
	require.Equal(t, "10", receivedQuery["pageSize"])
	require.Equal(t, "3", receivedQuery["page"], "offset 20 with limit 10 lands on page 3")
	require.NotContains(t, receivedQuery, "locale")

	require.Equal(t, 12, result.Metadata.Total)
	require.Len(t, result.Rows, 2)
	require.Equal(t, "app.home.title", result.Rows[0].FullKey)
	require.NotNil(t, result.Rows[0].Value)
	require.Nil(t, result.Rows[1].Value)
}

func TestHTTPServiceListPerLanguageView(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "fr", r.URL.Query().Get("locale"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":     []keysview.Row{},
			"metadata": map[string]int{"total": 0},
		})
	}))
	t.Cleanup(ts.Close)

	svc, err := keysview.NewHTTPService(ts.URL+"/api/v1", ts.Client())
	require.NoError(t, err)

	result, err := svc.ListPerLanguageView(context.Background(), "tok", "proj-1", "fr", keysview.Query{})
	require.NoError(t, err)
	require.Zero(t, result.Metadata.Total)

	_, err = svc.ListPerLanguageView(context.Background(), "tok", "proj-1", "", keysview.Query{})
	require.Error(t, err)
}

func TestHTTPServiceUpdateTranslation(t *testing.T) {
	t.Parallel()

	var payload map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects/proj-1/translations", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		defer r.Body.Close()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	t.Cleanup(ts.Close)

	svc, err := keysview.NewHTTPService(ts.URL+"/api/v1", ts.Client())
	require.NoError(t, err)

	value := "Bienvenue"
	err = svc.UpdateTranslation(context.Background(), "tok", keysview.UpdateRequest{
		ProjectID: "proj-1",
		KeyID:     "key-1",
		Locale:    "fr",
		Value:     &value,
	})
	require.NoError(t, err)
	require.Equal(t, "key-1", payload["keyId"])
	require.Equal(t, "fr", payload["locale"])
	require.Equal(t, "Bienvenue", payload["value"])

	// A nil value clears the translation: the backend receives "".
	err = svc.UpdateTranslation(context.Background(), "tok", keysview.UpdateRequest{
		ProjectID: "proj-1",
		KeyID:     "key-1",
		Locale:    "fr",
	})
	require.NoError(t, err)
	require.Equal(t, "", payload["value"])
}

func TestHTTPServiceSurfacesEnvelopeMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": nil,
			"error": map[string]any{
				"code":    400,
				"message": "invalid input: value must not contain newlines",
			},
		})
	}))
	t.Cleanup(ts.Close)

	svc, err := keysview.NewHTTPService(ts.URL+"/api/v1", ts.Client())
	require.NoError(t, err)

	err = svc.UpdateTranslation(context.Background(), "tok", keysview.UpdateRequest{
		ProjectID: "proj-1", KeyID: "key-1",
	})
	require.EqualError(t, err, "invalid input: value must not contain newlines")
}
