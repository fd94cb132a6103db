package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// TextFromBytes extracts UTF-8 text from an uploaded payload.
// PDF payloads go through github.com/ledongthuc/pdf; anything that looks like
// text is returned as-is. Binary payloads of other types are rejected.
func TextFromBytes(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	normalized := normalizeMimeType(mimeType, data)
	switch {
	case normalized == mimePDF:
		return extractPDF(data)
	case strings.HasPrefix(normalized, "text/"), normalized == "application/json":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("payload is not valid UTF-8 text")
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported mime type: %s", normalized)
	}
}

func normalizeMimeType(mimeType string, data []byte) string {
	trimmed := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(trimmed, ";"); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	if trimmed != "" && trimmed != "application/octet-stream" {
		return trimmed
	}
	detected := http.DetectContentType(data)
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = strings.TrimSpace(detected[:idx])
	}
	return detected
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
