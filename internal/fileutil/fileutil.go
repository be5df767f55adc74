package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// LocateMedia walks dir and returns files whose extension matches one of the
// provided extensions, largest first. Zero-byte files (failed or unfinished
// downloads) are ignored. Extensions are matched case-insensitively and must
// include the leading dot.
func LocateMedia(dir string, extensions []string) ([]string, error) {
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	type candidate struct {
		path string
		size int64
	}
	var candidates []candidate

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if _, ok := extSet[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			return nil
		}
		candidates = append(candidates, candidate{path: path, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan media directory: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].path < candidates[j].path
	})

	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.path)
	}
	return paths, nil
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SafeFileName sanitizes a display name into a filesystem-safe base name with
// the given suffix appended.
func SafeFileName(name, suffix string) string {
	sanitized := unsafeFileChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_ ")
	if sanitized == "" {
		sanitized = "output"
	}
	return sanitized + suffix
}

// ResetDir removes dir and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %q: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %q: %w", dir, err)
	}
	return nil
}
