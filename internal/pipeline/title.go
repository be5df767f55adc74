package pipeline

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoLower keeps acronyms and CJK text untouched; only word-initial letters
// are adjusted.
var titleCaser = cases.Title(language.English, cases.NoLower)

// titleFromFilename derives a presentable deck title from a downloaded video
// file name when neither the caller nor the downloader supplied one.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return ""
	}
	return titleCaser.String(base)
}
