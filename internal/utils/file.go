package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKind classifies input files by extension
type FileKind int

const (
	KindUnknown FileKind = iota
	// KindText is prose such as a resume in .txt or .md
	KindText
	// KindPDF needs text extraction before use
	KindPDF
	// KindJSON and KindYAML are structured request documents
	KindJSON
	KindYAML
)

var kindByExt = map[string]FileKind{
	".txt":      KindText,
	".text":     KindText,
	".md":       KindText,
	".markdown": KindText,
	".pdf":      KindPDF,
	".json":     KindJSON,
	".yaml":     KindYAML,
	".yml":      KindYAML,
}

// DetectKind returns the kind implied by the file extension
func DetectKind(filename string) FileKind {
	return kindByExt[strings.ToLower(filepath.Ext(filename))]
}

// Readable reports whether the kind can be read as text, directly or
// through PDF extraction
func (k FileKind) Readable() bool {
	return k != KindUnknown
}

// IsPDFFile checks if the file has a .pdf extension
func IsPDFFile(filename string) bool {
	return DetectKind(filename) == KindPDF
}

// ValidateInputFile checks that filename names an existing regular file
// that can be opened
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

// ValidateOutputFile makes sure the parent directory of filename exists.
// An empty name means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// FormatFileSize renders size with a binary unit, e.g. "1.5 KB"
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
