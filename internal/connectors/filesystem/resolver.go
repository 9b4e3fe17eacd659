// Package filesystem resolves file-backed locators.
//
// A file-backed locator such as json:///etc/app/config.json/server/port
// carries both the file path and a path inside the file. The split point
// is the longest prefix that names an existing regular file.
package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// ExpandHome replaces a leading "~" with the user's home directory.
// The path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Split returns the longest prefix of path that names an existing regular
// file, and the remainder with its leading slashes removed.
func Split(path string) (file, rest string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("empty path: %w", fs.ErrNotExist)
	}

	candidate := path
	for {
		info, statErr := os.Stat(candidate)
		if statErr == nil && info.Mode().IsRegular() {
			return candidate, strings.TrimLeft(path[len(candidate):], "/"), nil
		}

		cut := strings.LastIndexByte(candidate, '/')
		if cut <= 0 {
			break
		}
		candidate = candidate[:cut]
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return "", "", fmt.Errorf("%s is a directory, not a file", path)
	}
	return "", "", fmt.Errorf("no file found in %s: %w", path, fs.ErrNotExist)
}

// Normalize re-splits loc so Resource is the file and Element is the path
// inside it.
func Normalize(loc domain.Locator) (domain.Locator, error) {
	file, rest, err := Split(ExpandHome(loc.Path()))
	if err != nil {
		return loc, err
	}
	out := loc.WithElement(rest)
	out.Resource = file
	return out, nil
}

// SplitElement breaks an in-file element into its path segments.
// Empty segments from doubled or trailing slashes are dropped.
func SplitElement(element string) []string {
	var parts []string
	for _, p := range strings.Split(element, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
