// Package testutil provides shared helpers for admin HTTP tests.
package testutil

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver"
	custommw "github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
)

// Option customises the test server configuration.
type Option func(*httpserver.Config)

// WithAuthenticator substitutes the authenticator.
func WithAuthenticator(authenticator custommw.Authenticator) Option {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = authenticator
	}
}

// WithKeysService substitutes the keys data service.
func WithKeysService(service keysview.Service) Option {
	return func(cfg *httpserver.Config) {
		cfg.KeysService = service
	}
}

// NewServer starts an admin server on an ephemeral port and tears it down
// with the test.
func NewServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		BasePath: "/admin",
		Logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httptest.NewServer(httpserver.New(cfg).Handler)
	t.Cleanup(srv.Close)
	return srv
}

// ParseHTML parses a rendered response body into a goquery document.
func ParseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}
