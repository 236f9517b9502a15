// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts linear text from PDF bytes by concatenating
// per-page text in page order. It works on the extracted text stream
// only; layout, columns, and positioned glyphs are out of scope.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrNoText indicates a PDF that yielded no extractable text, typically
// a scanned or image-only document. Callers treat this as a recoverable
// extraction miss, not a fatal error.
var ErrNoText = errors.New("no extractable text")

// ExtractText returns the concatenated plain text of all pages, joined
// with newlines and truncated to maxChars (0 means unlimited). Pages
// that fail to extract are skipped.
func ExtractText(data []byte, maxChars int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	if maxChars > 0 && len(out) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out, nil
}
