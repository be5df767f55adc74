// Package extract turns a downloaded video into a sequence of distinct slide
// images. A low-resolution grayscale detection pass streams from ffmpeg and a
// similarity gate decides which timestamps become full-resolution captures.
package extract
