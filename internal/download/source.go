package download

import (
	"regexp"
	"strings"
)

// Source identifies which downloader family serves a URL.
type Source string

const (
	SourceBilibili Source = "bilibili"
	SourceYouTube  Source = "youtube"
	SourceUnknown  Source = "unknown"
)

var bilibiliPatterns = []*regexp.Regexp{
	regexp.MustCompile(`bilibili\.com`),
	regexp.MustCompile(`b23\.tv`),
	regexp.MustCompile(`acg\.tv`),
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com`),
	regexp.MustCompile(`youtu\.be`),
	regexp.MustCompile(`youtube-nocookie\.com`),
}

// DetectSource classifies a video URL by host family.
func DetectSource(url string) Source {
	lowered := strings.ToLower(url)
	for _, pattern := range bilibiliPatterns {
		if pattern.MatchString(lowered) {
			return SourceBilibili
		}
	}
	for _, pattern := range youtubePatterns {
		if pattern.MatchString(lowered) {
			return SourceYouTube
		}
	}
	return SourceUnknown
}
