package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument is an uploaded file before text extraction.
type RawDocument struct {
	// URI is the path or name the file was uploaded as.
	URI string

	// MIMEType selects the normaliser. Empty means detect from URI.
	MIMEType string

	Content []byte
}

// FallbackTitle derives a readable title from the file name.
func (r *RawDocument) FallbackTitle() string {
	name := filepath.Base(r.URI)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
