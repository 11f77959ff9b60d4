package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(file, []byte("Python"), 0600))

	assert.NoError(t, ValidateInputFile(file))
	assert.Error(t, ValidateInputFile(""))
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "missing.txt")), "does not exist")
	assert.ErrorContains(t, ValidateInputFile(dir), "directory")
}

func TestFileKinds(t *testing.T) {
	assert.Equal(t, KindText, DetectKind("resume.TXT"))
	assert.Equal(t, KindText, DetectKind("notes.MD"))
	assert.Equal(t, KindJSON, DetectKind("request.json"))
	assert.Equal(t, KindYAML, DetectKind("request.yml"))
	assert.Equal(t, KindUnknown, DetectKind("resume.docx"))
	assert.False(t, KindUnknown.Readable())
	assert.True(t, KindPDF.Readable())
	assert.True(t, IsPDFFile("Resume.PDF"))
}

func TestValidateOutputFile(t *testing.T) {
	assert.NoError(t, ValidateOutputFile(""))
	nested := filepath.Join(t.TempDir(), "out", "deep", "result.json")
	require.NoError(t, ValidateOutputFile(nested))
	assert.DirExists(t, filepath.Dir(nested))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "5.0 MB", FormatFileSize(5*1024*1024))
}

func TestExtractPDFTextRejectsBadInput(t *testing.T) {
	assert.False(t, LooksLikePDF([]byte("plain text resume")))

	_, err := ExtractPDFText([]byte("plain text resume"))
	assert.ErrorContains(t, err, "not a PDF")

	assert.NotPanics(t, func() {
		_, err = ExtractPDFText([]byte("%PDF-1.4\ngarbage without xref"))
	})
	assert.Error(t, err)
}
