package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   CaptureInput
		want error
	}{
		{
			name: "valid",
			in:   CaptureInput{URL: "https://example.com/a", Title: "A"},
			want: nil,
		},
		{
			name: "http accepted",
			in:   CaptureInput{URL: "http://example.com/a", Title: "A"},
			want: nil,
		},
		{
			name: "missing url",
			in:   CaptureInput{Title: "A"},
			want: ErrMissingURLOrTitle,
		},
		{
			name: "missing title",
			in:   CaptureInput{URL: "https://example.com/a"},
			want: ErrMissingURLOrTitle,
		},
		{
			name: "chrome scheme",
			in:   CaptureInput{URL: "chrome://settings", Title: "Settings"},
			want: ErrBadScheme,
		},
		{
			name: "file scheme",
			in:   CaptureInput{URL: "file:///etc/hosts", Title: "hosts"},
			want: ErrBadScheme,
		},
		{
			name: "unparseable url",
			in:   CaptureInput{URL: "https://ex ample.com/", Title: "A"},
			want: ErrBadScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
