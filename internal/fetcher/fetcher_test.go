package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_HTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><style>p{}</style><script>var x</script></head>
<body><nav>Home</nav><p>I need to   call mom.</p><div>I know I should rest, but I keep going.</div><footer>c</footer></body></html>`))
	}))
	defer srv.Close()

	text, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "I need to call mom. I know I should rest, but I keep going.", text)
}

func TestFetch_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Gotta <b>run</b>\n\nlater"))
	}))
	defer srv.Close()

	text, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Gotta <b>run</b> later", text)
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><script>x</script></html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	_, err = New().Fetch(context.Background(), srv.URL+"/empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")

	_, err = New().Fetch(context.Background(), "ftp://example.com/file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestCollapse_Truncates(t *testing.T) {
	got := collapse(strings.Repeat("a", maxTextBytes+10))
	assert.Len(t, got, maxTextBytes+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com"))
	assert.True(t, IsURL("  www.example.com"))
	assert.False(t, IsURL("I need to buy milk"))
}
