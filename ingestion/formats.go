// Package ingestion handles upload validation, parsing, chunking, and
// indexing of infrastructure configuration files.
package ingestion

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/OpsaAI/OpsaAI/fault"
)

// Format enumerates supported parse formats.
type Format string

const (
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
	FormatPDF        Format = "pdf"
	FormatDockerfile Format = "dockerfile"
	FormatText       Format = "txt"
)

// MaxUploadSize caps uploads at 10MB.
const MaxUploadSize = 10 << 20

// AllowedExtensions is the upload allow-list, matched case-insensitively. A
// bare "Dockerfile" counts as its own extension.
var AllowedExtensions = []string{"yaml", "yml", "json", "pdf", "dockerfile", "txt", "md", "log"}

// DetectFormat infers the parse format from the file extension.
func DetectFormat(fileName string) Format {
	switch fileExtension(fileName) {
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	case "pdf":
		return FormatPDF
	case "dockerfile":
		return FormatDockerfile
	default:
		return FormatText
	}
}

// FileType reports the descriptive type stored on the document: the
// lowercased extension.
func FileType(fileName string) string {
	return fileExtension(fileName)
}

// ValidateUpload rejects unsupported extensions and oversized payloads before
// any parsing happens.
func ValidateUpload(fileName string, size int64) error {
	ext := fileExtension(fileName)
	if !slices.Contains(AllowedExtensions, ext) {
		return fault.New(fault.Validation, "unsupported file type: %s. allowed types: %s", ext, strings.Join(AllowedExtensions, ", "))
	}
	if size > MaxUploadSize {
		return fault.New(fault.Validation, "file too large: %d bytes. maximum size: %d bytes", size, MaxUploadSize)
	}
	return nil
}

// fileExtension returns the lowercased extension, or the whole lowercased
// base name when there is none (so "Dockerfile" maps to "dockerfile").
func fileExtension(fileName string) string {
	base := filepath.Base(fileName)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return strings.ToLower(base[i+1:])
	}
	return strings.ToLower(base)
}
