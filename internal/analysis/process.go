package analysis

import (
	"fmt"
	"math"
	"math/big"

	"github.com/pbaille/journal/internal/domain"
)

const summaryFormat = "Analyzed %d entries with an average emotion score of %s. " +
	"Found %d unique tags, extracted %d tasks, and identified %d distinct perspectives."

// ProcessEntries analyzes entries in order and returns a freshly built report.
// The entries are read only.
func ProcessEntries(entries []domain.Entry) domain.ProcessedResult {
	tagFrequencies := CountTags(entries)
	avg := AverageEmotionScore(entries)

	tasks := []domain.Task{}
	perspectives := []domain.Perspective{}
	for _, e := range entries {
		tasks = append(tasks, ExtractTasks(e.TranscriptUser, e.ID)...)
		perspectives = append(perspectives, ExtractPerspectives(e.TranscriptUser, e.ID, e.EmotionScore)...)
	}

	return domain.ProcessedResult{
		Summary:        fmt.Sprintf(summaryFormat, len(entries), formatScore(avg), len(tagFrequencies), len(tasks), len(perspectives)),
		TagFrequencies: tagFrequencies,
		Tasks:          tasks,
		Perspectives:   perspectives,
	}
}

// CountTags tallies user tags then model tags of every entry.
func CountTags(entries []domain.Entry) map[string]int {
	freq := make(map[string]int)
	for _, e := range entries {
		for _, tag := range e.TagsUser {
			freq[tag]++
		}
		for _, tag := range e.TagsModel {
			freq[tag]++
		}
	}
	return freq
}

// AverageEmotionScore is the mean score, counting missing scores as zero.
// It returns 0 for no entries.
func AverageEmotionScore(entries []domain.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range entries {
		if e.EmotionScore != nil {
			total += *e.EmotionScore
		}
	}
	return total / float64(len(entries))
}

// formatScore renders v with two decimals, rounding exact ties away from zero.
func formatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%.2f", v)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	// n = floor(v*100 + 1/2), computed on the exact binary value of v
	r := new(big.Rat).SetFloat64(v)
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	cents := new(big.Int)
	whole, _ := new(big.Int).QuoRem(n, big.NewInt(100), cents)
	return fmt.Sprintf("%s%s.%02d", sign, whole.String(), cents.Int64())
}
