package extract

import (
	"crypto/md5"
	"math"
)

// equalizeHistogram redistributes grayscale intensities so lighting changes
// between frames do not dominate the comparison. The output is a normalized
// feature vector over the same pixel grid.
func equalizeHistogram(pixels []byte) []float64 {
	var histogram [256]int
	for _, p := range pixels {
		histogram[p]++
	}

	total := len(pixels)
	if total == 0 {
		return nil
	}

	var lookup [256]float64
	cumulative := 0
	for level := 0; level < 256; level++ {
		cumulative += histogram[level]
		lookup[level] = float64(cumulative) * 255.0 / float64(total)
	}

	features := make([]float64, total)
	for i, p := range pixels {
		features[i] = lookup[p]
	}
	return features
}

// cosineSimilarity returns the cosine of the angle between two feature
// vectors. Identical frames score 1.0; unrelated content scores near 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// frameDigest fingerprints raw detection pixels for the exact-duplicate fast
// path, which skips the similarity computation entirely for repeated frames.
func frameDigest(pixels []byte) [md5.Size]byte {
	return md5.Sum(pixels)
}
