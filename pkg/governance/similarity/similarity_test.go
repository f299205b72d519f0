package similarity

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"abc", "abd", 1},
		{"intention", "execution", 5},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "hello world", "hello world", 1.0},
		{"one empty", "abcd", "", 0.0},
		{"kitten sitting", "kitten", "sitting", 1.0 - 3.0/7.0},
		{"one substitution", "abcdefghij", "abcdefghiX", 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("ab c")

	randomString := func() string {
		n := rng.Intn(24)
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}

	for i := 0; i < 500; i++ {
		a, b := randomString(), randomString()

		ab := Similarity(a, b)
		ba := Similarity(b, a)
		if ab != ba {
			t.Fatalf("Similarity not symmetric for %q, %q: %v vs %v", a, b, ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("Similarity(%q, %q) = %v out of [0,1]", a, b, ab)
		}
		if Similarity(a, a) != 1.0 {
			t.Fatalf("Similarity(%q, %q) != 1", a, a)
		}
		if d := Distance(a, b); d > max(len(a), len(b)) {
			t.Fatalf("Distance(%q, %q) = %d exceeds longest length", a, b, d)
		}
	}
}
