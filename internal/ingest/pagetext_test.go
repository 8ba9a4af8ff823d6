package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "plain paragraphs",
			html: "<html><body><p>Hello</p><p>world</p></body></html>",
			want: "Hello world",
		},
		{
			name: "script and style dropped",
			html: "<body><script>var x = 1;</script><style>.a{}</style><p>Visible</p></body>",
			want: "Visible",
		},
		{
			name: "noscript and template dropped",
			html: "<body><noscript>enable js</noscript><template>tpl</template>Text</body>",
			want: "Text",
		},
		{
			name: "nested markup",
			html: "<div>outer <span>inner</span> tail</div>",
			want: "outer inner tail",
		},
		{
			name: "whitespace collapsed",
			html: "<p>a\n\n   b\t\tc</p>",
			want: "a b c",
		},
		{
			name: "text after skipped block",
			html: "<script>junk</script>after",
			want: "after",
		},
		{
			name: "empty",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(strings.NewReader(tt.html), pageTextCap)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_Capped(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := ExtractText(strings.NewReader(html), 20)
	assert.LessOrEqual(t, len(got), 20)
	assert.True(t, strings.HasPrefix(got, "word"))
}

func TestExtractText_CapOnRuneBoundary(t *testing.T) {
	// An odd byte cap lands mid-rune for two-byte characters; the cut must
	// back off instead of emitting a partial sequence.
	html := "<p>" + strings.Repeat("é", 20) + "</p>"
	got := ExtractText(strings.NewReader(html), 11)
	assert.Equal(t, strings.Repeat("é", 5), got)
	assert.True(t, utf8.ValidString(got))
}

func TestFetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Heading</h1><p>Body.</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewPageFetcher()
	got := fetcher.FetchText(context.Background(), server.URL)
	assert.Equal(t, "Heading Body.", got)
}

func TestFetchText_NonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not": "html"}`))
	}))
	defer server.Close()

	fetcher := NewPageFetcher()
	assert.Equal(t, "", fetcher.FetchText(context.Background(), server.URL))
}

func TestFetchText_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewPageFetcher()
	assert.Equal(t, "", fetcher.FetchText(context.Background(), server.URL))
}

func TestFetchText_UnreachableHost(t *testing.T) {
	fetcher := NewPageFetcher()
	assert.Equal(t, "", fetcher.FetchText(context.Background(), "http://127.0.0.1:1/nope"))
}
