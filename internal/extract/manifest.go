package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Slide is one retained frame as recorded in the slides manifest.
type Slide struct {
	Index         int     `json:"index"`
	File          string  `json:"file"`
	Timestamp     float64 `json:"timestamp"`
	TimestampText string  `json:"timestamp_text"`
	Similarity    float64 `json:"similarity"`
}

// Manifest records the extraction outcome alongside the parameters that
// produced it, so a deck can be rebuilt without re-scanning the video.
type Manifest struct {
	GeneratedAt         time.Time `json:"generated_at"`
	VideoFiles          []string  `json:"video_files"`
	VideoWidth          int       `json:"video_width"`
	VideoHeight         int       `json:"video_height"`
	SimilarityThreshold float64   `json:"similarity_threshold"`
	MinIntervalSeconds  float64   `json:"min_interval_seconds"`
	SlideCount          int       `json:"slide_count"`
	Slides              []Slide   `json:"slides"`
}

// FormatTimestamp renders seconds as H:MM:SS for display in the manifest.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// WriteManifest persists the manifest as indented JSON, creating the parent
// directory when needed.
func WriteManifest(path string, manifest Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a previously written manifest.
func ReadManifest(path string) (Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return manifest, nil
}
