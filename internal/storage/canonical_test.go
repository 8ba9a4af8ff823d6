package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain url unchanged",
			in:   "https://example.com/page",
			want: "https://example.com/page",
		},
		{
			name: "fragment stripped",
			in:   "https://example.com/page#section-2",
			want: "https://example.com/page",
		},
		{
			name: "query parameters sorted",
			in:   "https://x.com/a?b=1&a=2",
			want: "https://x.com/a?a=2&b=1",
		},
		{
			name: "sorted query and fragment together",
			in:   "https://x.com/a?b=1&a=2#frag",
			want: "https://x.com/a?a=2&b=1",
		},
		{
			name: "repeated keys keep value order",
			in:   "https://x.com/a?b=2&a=1&b=1",
			want: "https://x.com/a?a=1&b=2&b=1",
		},
		{
			name: "unparseable returns input",
			in:   "http://exa mple.com/%zz",
			want: "http://exa mple.com/%zz",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalURL(tt.in)
			assert.Equal(t, tt.want, got)

			// Canonicalization must be idempotent.
			assert.Equal(t, got, CanonicalURL(got))
		})
	}
}

func TestStripFragment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fragment removed",
			in:   "https://example.com/page#top",
			want: "https://example.com/page",
		},
		{
			name: "query order preserved",
			in:   "https://x.com/a?b=1&a=2#frag",
			want: "https://x.com/a?b=1&a=2",
		},
		{
			name: "no fragment",
			in:   "https://example.com/page",
			want: "https://example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFragment(tt.in))
		})
	}
}
