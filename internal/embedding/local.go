package embedding

import (
	"context"
	"unicode/utf16"
)

// LocalDimensions is the length of vectors produced by Local.
const LocalDimensions = 8

// Local derives a small vector from the text's UTF-16 code units. It needs no
// network access and always returns the same vector for the same text.
type Local struct{}

func (Local) Embed(_ context.Context, text string) ([]float64, error) {
	units := utf16.Encode([]rune(text))
	vector := make([]float64, LocalDimensions)
	if len(units) == 0 {
		return vector, nil
	}
	for i := range vector {
		vector[i] = float64(units[i%len(units)]%100) / 100
	}
	return vector, nil
}

func (Local) Model() string { return "local-charcode-8" }
