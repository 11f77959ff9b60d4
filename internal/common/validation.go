package common

import (
	"fmt"
	"slices"
	"strings"
)

// formatAliases maps short or file-extension style names onto formatter names
var formatAliases = map[string]string{
	"md":  "markdown",
	"yml": "yaml",
	"txt": "text",
}

// ResolveOutputFormat normalizes the requested format, falls back to
// defaultFormat when none was given and checks the result against the
// configured list. An empty list allows any format.
func ResolveOutputFormat(format, defaultFormat string, supportedFormats []string) (string, error) {
	resolved := strings.ToLower(strings.TrimSpace(format))
	if resolved == "" {
		resolved = strings.ToLower(defaultFormat)
	}
	if alias, ok := formatAliases[resolved]; ok {
		resolved = alias
	}

	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, resolved) {
		return resolved, nil
	}
	return "", fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
