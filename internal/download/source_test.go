package download

import "testing"

func TestDetectSource(t *testing.T) {
	cases := []struct {
		url  string
		want Source
	}{
		{"https://www.bilibili.com/video/BV1xx411c7mD", SourceBilibili},
		{"https://b23.tv/abc123", SourceBilibili},
		{"http://acg.tv/sm123", SourceBilibili},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", SourceYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", SourceYouTube},
		{"https://www.youtube-nocookie.com/embed/xyz", SourceYouTube},
		{"HTTPS://WWW.YOUTUBE.COM/watch?v=ABC", SourceYouTube},
		{"https://vimeo.com/12345", SourceUnknown},
		{"not a url", SourceUnknown},
		{"", SourceUnknown},
	}
	for _, tc := range cases {
		if got := DetectSource(tc.url); got != tc.want {
			t.Fatalf("DetectSource(%q) = %s, want %s", tc.url, got, tc.want)
		}
	}
}
