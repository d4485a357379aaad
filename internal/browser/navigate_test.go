// File: internal/browser/navigate_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare host gets https", in: "example.com", want: "https://example.com"},
		{name: "path preserved", in: "example.com/search?q=flights", want: "https://example.com/search?q=flights"},
		{name: "explicit http kept", in: "http://example.com", want: "http://example.com"},
		{name: "surrounding whitespace", in: "  example.com  ", want: "https://example.com"},
		{name: "empty", in: "", wantErr: true},
		{name: "unsupported scheme", in: "ftp://example.com", wantErr: true},
		{name: "javascript scheme", in: "javascript:alert(1)", wantErr: true},
		{name: "no dot in host", in: "localhost", wantErr: true},
		{name: "bare word", in: "thanks", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
