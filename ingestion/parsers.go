package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"
)

// ParseContent decodes an uploaded payload into plain text for chunking.
// YAML and JSON are normalized to pretty-printed JSON so structurally equal
// files index identically; content that fails to parse falls back to the raw
// text rather than rejecting the upload.
func ParseContent(data []byte, format Format) (string, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data), nil
	case FormatJSON:
		return parseJSON(data), nil
	case FormatPDF:
		return parsePDF(data)
	default:
		return normalizePlainText(string(data)), nil
	}
}

func parseYAML(data []byte) string {
	// Blank input decodes to nil without error and would pretty-print as
	// "null"; return the raw text so blank uploads stay blank and get
	// rejected downstream.
	if strings.TrimSpace(string(data)) == "" {
		return string(data)
	}

	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	if parsed == nil {
		return string(data)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}

func parseJSON(data []byte) string {
	if strings.TrimSpace(string(data)) == "" {
		return string(data)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	if parsed == nil {
		return string(data)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}

func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return normalizePlainText(buf.String()), nil
}

func normalizePlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
