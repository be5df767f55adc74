package extract

import (
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	if sim := cosineSimilarity(a, a); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("self similarity = %v", sim)
	}
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	if sim := cosineSimilarity([]float64{1, 2}, []float64{1}); sim != 0 {
		t.Fatalf("similarity = %v, want 0", sim)
	}
	if sim := cosineSimilarity(nil, nil); sim != 0 {
		t.Fatalf("similarity = %v, want 0", sim)
	}
}

func TestEqualizeHistogramNormalizesBrightness(t *testing.T) {
	// The same pattern at two brightness levels equalizes identically:
	// only the rank order of intensities matters.
	dark := []byte{10, 10, 30, 30}
	bright := []byte{100, 100, 220, 220}

	a := equalizeHistogram(dark)
	b := equalizeHistogram(bright)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("features diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
	if sim := cosineSimilarity(a, b); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("similarity = %v, want 1", sim)
	}
}

func TestFrameDigestDistinguishesFrames(t *testing.T) {
	a := frameDigest([]byte{1, 2, 3})
	b := frameDigest([]byte{1, 2, 4})
	if a == b {
		t.Fatal("different frames share a digest")
	}
	if a != frameDigest([]byte{1, 2, 3}) {
		t.Fatal("digest not stable")
	}
}
