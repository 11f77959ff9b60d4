package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"json", "yaml", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		fallback  string
		supported []string
		want      string
		wantErr   string
	}{
		{name: "json", format: "json", supported: supported, want: "json"},
		{name: "yaml", format: "yaml", supported: supported, want: "yaml"},
		{name: "upper case", format: "JSON", supported: supported, want: "json"},
		{name: "md alias", format: "md", supported: supported, want: "markdown"},
		{name: "yml alias", format: " yml ", supported: supported, want: "yaml"},
		{name: "default applied", format: "", fallback: "text", supported: supported, want: "text"},
		{name: "unknown", format: "xml", supported: supported,
			wantErr: "unsupported output format 'xml'. Supported formats: [json yaml text markdown]"},
		{name: "no default", format: "", supported: supported,
			wantErr: "unsupported output format ''"},
		{name: "no restrictions", format: "xml", supported: nil, want: "xml"},
		{name: "single format", format: "text", supported: []string{"json"},
			wantErr: "Supported formats: [json]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.format, tt.fallback, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
