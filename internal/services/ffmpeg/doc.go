// Package ffmpeg wraps the ffmpeg and ffprobe command-line tools behind the
// narrow probe, frame-scan, and snapshot interfaces the keyframe extractor
// consumes. The detection pass streams downscaled grayscale raw frames over a
// pipe; kept timestamps are re-captured at full resolution afterwards.
package ffmpeg
