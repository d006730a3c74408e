package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate_Empty(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 0, Estimate("   \t\n  "))
}

func TestEstimate_ShortWords(t *testing.T) {
	// Average word length <= 5: one token per word.
	assert.Equal(t, 3, Estimate("the cat sat"))
	assert.Equal(t, 1, Estimate("hello"))
	assert.Equal(t, 5, Estimate("a b c d e"))
}

func TestEstimate_LongWords(t *testing.T) {
	// Average word length > 5: count is inflated by 1.3, rounded up.
	tests := []struct {
		name string
		text string
		want int
	}{
		{"single long word", "internationalization", 2}, // ceil(1 * 1.3)
		{"two long words", "concurrency semaphore", 3},  // ceil(2 * 1.3)
		{"ten long words", strings.Repeat("bisection ", 10), 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.text))
		})
	}
}

func TestEstimate_MixedWhitespace(t *testing.T) {
	assert.Equal(t, 4, Estimate("one\ttwo\nthree\r\nfour"))
}

func TestEstimate_Deterministic(t *testing.T) {
	text := "Sentence one. Sentence two. Sentence three."
	first := Estimate(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Estimate(text))
	}
}
