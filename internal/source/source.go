// Package source reads the raw text fed to the key-point extractor.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"paperd/internal/common/fsutil"
)

// ErrNoExtractableText is returned when a file yields no text after sanitizing.
var ErrNoExtractableText = errors.New("no extractable text")

// ErrUnsupportedFormat is returned for extensions other than .txt, .md and .pdf.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Load returns the sanitized text of a .txt, .md or .pdf file.
func Load(path string) (string, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	var text string
	switch strings.ToLower(filepath.Ext(p)) {
	case ".txt", ".md", ".markdown", "":
		b, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%s: not valid UTF-8 text", path)
		}
		text = string(b)
	case ".pdf":
		text, err = readPDF(p)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(p))
	}
	text = SanitizeText(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoExtractableText)
	}
	return text, nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}

// SanitizeText drops NUL and other non-printing control characters except
// newline, carriage return and tab, and trims surrounding whitespace.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}
