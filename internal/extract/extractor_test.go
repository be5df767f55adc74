package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/services/ffmpeg"
)

// fakeEngine serves pre-scripted detection frames per video path and records
// snapshot requests instead of running ffmpeg.
type fakeEngine struct {
	frames    map[string][][]byte
	durations map[string]float64
	snapshots []float64
	probeErr  error
}

func (f *fakeEngine) Probe(ctx context.Context, videoPath string) (ffmpeg.ProbeResult, error) {
	if f.probeErr != nil {
		return ffmpeg.ProbeResult{}, f.probeErr
	}
	return ffmpeg.ProbeResult{
		DurationSeconds: f.durations[videoPath],
		FPS:             30,
		Width:           1920,
		Height:          1080,
	}, nil
}

func (f *fakeEngine) ScanFrames(ctx context.Context, videoPath string, opts ffmpeg.ScanOptions, fn func(ffmpeg.Frame) error) error {
	for i, pixels := range f.frames[videoPath] {
		frame := ffmpeg.Frame{
			Index:     i,
			Timestamp: opts.SkipSeconds + float64(i)/opts.SampleFPS,
			Pixels:    pixels,
			Width:     opts.Width,
			Height:    opts.Height,
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) Snapshot(ctx context.Context, videoPath string, timestamp float64, outPath, format string, quality int) error {
	f.snapshots = append(f.snapshots, timestamp)
	return os.WriteFile(outPath, []byte("image"), 0o644)
}

// uniformFrame builds a detection frame with every pixel at the given level.
func uniformFrame(level byte) []byte {
	pixels := make([]byte, DetectWidth*DetectHeight)
	for i := range pixels {
		pixels[i] = level
	}
	return pixels
}

// gradientFrame builds a frame whose intensity varies per row, so two frames
// with different shifts equalize to dissimilar feature vectors.
func gradientFrame(shift int) []byte {
	pixels := make([]byte, DetectWidth*DetectHeight)
	for y := 0; y < DetectHeight; y++ {
		for x := 0; x < DetectWidth; x++ {
			value := 0
			if (x/16+y/16+shift)%2 == 0 {
				value = 255
			}
			pixels[y*DetectWidth+x] = byte(value)
		}
	}
	return pixels
}

func defaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.95,
		MinIntervalSeconds:  2,
		SampleFPS:           1,
		ImageFormat:         "jpg",
		ImageQuality:        95,
	}
}

func newTestExtractor(t *testing.T, engine Engine) *Extractor {
	t.Helper()
	extractor, err := NewExtractor(engine, logging.NewNop())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return extractor
}

func TestExtractKeepsFirstAndDistinctFrames(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames: map[string][][]byte{
			"v.mp4": {
				gradientFrame(0), // kept: first frame
				gradientFrame(0), // duplicate hash, skipped
				gradientFrame(1), // kept: dissimilar checkerboard, 2s elapsed
			},
		},
		durations: map[string]float64{"v.mp4": 3},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), defaultOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 2 {
		t.Fatalf("retained = %d, want 2", len(result.Frames))
	}
	if result.Frames[0].Timestamp != 0 || result.Frames[0].Similarity != 0 {
		t.Fatalf("first frame = %+v", result.Frames[0])
	}
	if result.Frames[1].Timestamp != 2 {
		t.Fatalf("second frame timestamp = %v", result.Frames[1].Timestamp)
	}
	if result.Frames[1].Similarity >= 0.95 {
		t.Fatalf("similarity = %v, expected below threshold", result.Frames[1].Similarity)
	}
	for _, frame := range result.Frames {
		if _, err := os.Stat(frame.Path); err != nil {
			t.Fatalf("snapshot missing: %v", err)
		}
	}
}

func TestExtractMinIntervalSuppressesRapidChanges(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions()
	opts.MinIntervalSeconds = 10

	engine := &fakeEngine{
		frames: map[string][][]byte{
			"v.mp4": {
				gradientFrame(0),
				gradientFrame(1), // dissimilar but only 1s after the last keep
				gradientFrame(0), // duplicate of frame 0 by hash
			},
		},
		durations: map[string]float64{"v.mp4": 3},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 1 {
		t.Fatalf("retained = %d, want only the first frame", len(result.Frames))
	}
}

func TestExtractSimilarFramesCollapsed(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames: map[string][][]byte{
			// Uniform frames at different levels equalize to identical
			// feature vectors, so similarity stays at 1.0.
			"v.mp4": {uniformFrame(10), uniformFrame(200), uniformFrame(90)},
		},
		durations: map[string]float64{"v.mp4": 3},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), defaultOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 1 {
		t.Fatalf("retained = %d, want 1", len(result.Frames))
	}
}

func TestExtractReappearingSlideKept(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames: map[string][][]byte{
			"v.mp4": {
				gradientFrame(0), // kept: first frame
				gradientFrame(1), // rejected: only 1s after the last keep
				gradientFrame(1), // kept: still showing at 2s
				gradientFrame(1), // identical to the last keep, skipped
				gradientFrame(0), // kept: the earlier slide shown again
			},
		},
		durations: map[string]float64{"v.mp4": 5},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), defaultOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 3 {
		t.Fatalf("retained = %d, want 3", len(result.Frames))
	}
	for i, want := range []float64{0, 2, 4} {
		if result.Frames[i].Timestamp != want {
			t.Fatalf("frame %d timestamp = %v, want %v", i, result.Frames[i].Timestamp, want)
		}
	}
}

func TestExtractSegmentFirstFrameAlwaysKept(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		// Both parts open on the same frame; the second part's opener must be
		// retained even though it matches the last keep of the first part.
		frames: map[string][][]byte{
			"part1.mp4": {gradientFrame(0)},
			"part2.mp4": {gradientFrame(0)},
		},
		durations: map[string]float64{"part1.mp4": 1, "part2.mp4": 1},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"part1.mp4", "part2.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), defaultOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 2 {
		t.Fatalf("retained = %d, want 2", len(result.Frames))
	}
	if result.Frames[1].Timestamp != 1 {
		t.Fatalf("second frame timestamp = %v, want offset carried", result.Frames[1].Timestamp)
	}
	if result.Frames[1].Similarity != 0 {
		t.Fatalf("segment opener similarity = %v, want unconditional keep", result.Frames[1].Similarity)
	}
}

func TestExtractNoFrames(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames:    map[string][][]byte{"v.mp4": nil},
		durations: map[string]float64{"v.mp4": 0},
	}
	extractor := newTestExtractor(t, engine)

	_, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), defaultOptions())
	if !errors.Is(err, services.ErrNoFrames) {
		t.Fatalf("err = %v, want no frames", err)
	}
}

func TestExtractMultiSegmentTimeline(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames: map[string][][]byte{
			"part1.mp4": {gradientFrame(0)},
			"part2.mp4": {gradientFrame(1)},
		},
		durations: map[string]float64{"part1.mp4": 60, "part2.mp4": 30},
	}
	opts := defaultOptions()
	opts.MinIntervalSeconds = 2
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"part1.mp4", "part2.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Frames) != 2 {
		t.Fatalf("retained = %d", len(result.Frames))
	}
	// Second segment's frame carries the accumulated offset of the first.
	if result.Frames[1].Timestamp != 60 {
		t.Fatalf("timestamp = %v, want 60", result.Frames[1].Timestamp)
	}
	if result.DurationSeconds != 90 {
		t.Fatalf("total duration = %v", result.DurationSeconds)
	}
	if result.Frames[0].Index != 1 || result.Frames[1].Index != 2 {
		t.Fatalf("indexes = %d, %d", result.Frames[0].Index, result.Frames[1].Index)
	}
}

func TestExtractWritesManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "slides", "slides.json")
	engine := &fakeEngine{
		frames:    map[string][][]byte{"v.mp4": {gradientFrame(0), gradientFrame(1)}},
		durations: map[string]float64{"v.mp4": 3},
	}
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), manifestPath, defaultOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	manifest, err := ReadManifest(result.ManifestPath)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.SlideCount != len(result.Frames) {
		t.Fatalf("manifest count = %d, frames = %d", manifest.SlideCount, len(result.Frames))
	}
	if manifest.SimilarityThreshold != 0.95 {
		t.Fatalf("manifest threshold = %v", manifest.SimilarityThreshold)
	}
	if manifest.VideoWidth != 1920 || manifest.VideoHeight != 1080 {
		t.Fatalf("manifest geometry = %dx%d", manifest.VideoWidth, manifest.VideoHeight)
	}
	for i, slide := range manifest.Slides {
		if slide.File != filepath.Base(result.Frames[i].Path) {
			t.Fatalf("slide file = %q", slide.File)
		}
		if slide.TimestampText != FormatTimestamp(slide.Timestamp) {
			t.Fatalf("timestamp text = %q for %v", slide.TimestampText, slide.Timestamp)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00"},
		{61.4, "0:01:01"},
		{3725, "1:02:05"},
		{-2, "0:00:00"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestExtractSkipSecondsOnlyFirstSegment(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		frames:    map[string][][]byte{"v.mp4": {gradientFrame(0)}},
		durations: map[string]float64{"v.mp4": 10},
	}
	opts := defaultOptions()
	opts.SkipFirstSeconds = 5
	extractor := newTestExtractor(t, engine)

	result, err := extractor.Extract(context.Background(), []string{"v.mp4"},
		filepath.Join(dir, "images"), filepath.Join(dir, "slides.json"), opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Frames[0].Timestamp != 5 {
		t.Fatalf("timestamp = %v, want skip offset applied", result.Frames[0].Timestamp)
	}
}
