// Package biomart provides access to the Ensembl BioMart web service.
package biomart

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed queries/*.xml
var queryFS embed.FS

// Query returns the built-in XML query template with the given file name,
// collapsed to a single line. BioMart rejects payloads containing literal
// newlines, so the template's line breaks are stripped.
func Query(name string) (string, error) {
	data, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		return "", fmt.Errorf("read query template %s: %w", name, err)
	}
	return flatten(data), nil
}

// QueryFromDir reads an XML query template from a directory on disk instead
// of the built-in set. A missing file is an error.
func QueryFromDir(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("read query template: %w", err)
	}
	return flatten(data), nil
}

func flatten(data []byte) string {
	s := strings.ReplaceAll(string(data), "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
