//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/docs-e2e/internal/browser"
)

const homeHTML = `<!doctype html>
<html>
<head><title>Fast and reliable end-to-end testing | Playwright</title></head>
<body>
  <nav role="navigation">
    <a href="/docs/intro">Docs</a>
    <button class="DocSearch-Button" aria-label="Search" onclick="document.getElementById('q').style.display='block'">Search</button>
  </nav>
  <h1>Playwright enables reliable end-to-end testing</h1>
  <a href="/docs/intro">Get started</a>
  <form action="/search" method="get">
    <input id="q" name="q" class="DocSearch-Input" placeholder="Search docs" style="display:none">
  </form>
  <ul id="items"><li>one</li><li>two</li><li>three</li></ul>
</body>
</html>`

const introHTML = `<!doctype html>
<html>
<head><title>Installation | Playwright</title></head>
<body>
  <nav role="navigation"><a href="/">Home</a></nav>
  <h1>Installation</h1>
  <p>Get started by installing Playwright.</p>
</body>
</html>`

const searchHTML = `<!doctype html>
<html><head><title>Search | Playwright</title></head>
<body><h1>Search results</h1><p>API testing guide</p></body></html>`

// newSite serves a small copy of the documentation layout.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/docs/intro", page(introHTML))
	mux.HandleFunc("/search", page(searchHTML))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page(homeHTML)(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// launch starts a headless session against baseURL, skipping when no
// Chrome binary is available.
func launch(t *testing.T, baseURL string, opts ...func(*browser.Options)) *browser.Session {
	t.Helper()

	o := browser.Options{
		Headless: true,
		Timeout:  30 * time.Second,
		BaseURL:  baseURL,
		Trace:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	session, err := browser.Launch(ctx, o, zaptest.NewLogger(t))
	if err != nil {
		t.Skipf("chrome not available: %v", err)
	}
	t.Cleanup(func() {
		require.NoError(t, session.Close())
	})
	return session
}
