package analysis

import (
	"regexp"
	"strings"

	"github.com/pbaille/journal/internal/domain"
)

// conflictPatterns capture "<lead-in> X, but Y" structures. Each group is
// applied to the whole text and may match several times.
var conflictPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:I know|I want|I should|I say|I think) ([^,]+), (?:but|though|yet|however) ([^.!?]+)`),
	regexp.MustCompile(`(?i)(?:I tell myself|I believe) ([^,]+), (?:but|though|yet|however) ([^.!?]+)`),
}

var (
	rationalKeywords  = []string{"should", "need", "must", "have to", "know", "think", "believe"}
	emotionalKeywords = []string{"feel", "want", "wish", "hope", "afraid", "scared", "anxious", "keep"}
)

// Score multipliers for the two sides of a conflict. Results are not clamped.
const (
	rationalWeight  = 0.7
	emotionalWeight = 1.3
)

// ExtractPerspectives splits every conflict statement in text into a first
// clause and a second clause perspective. When the text holds no conflict
// statement, the whole text is returned as a single conflict perspective
// carrying the source score unchanged.
func ExtractPerspectives(text, entryID string, score *float64) []domain.Perspective {
	var perspectives []domain.Perspective

	for _, p := range conflictPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			first := trimSpace(m[1])
			second := trimSpace(m[2])

			perspectives = append(perspectives,
				domain.Perspective{
					Text:          first,
					EmotionScore:  scale(score, rationalWeight),
					Type:          classify(first, rationalKeywords, domain.PerspectiveRational),
					SourceEntryID: entryID,
				},
				domain.Perspective{
					Text:          second,
					EmotionScore:  scale(score, emotionalWeight),
					Type:          classify(second, emotionalKeywords, domain.PerspectiveEmotional),
					SourceEntryID: entryID,
				},
			)
		}
	}

	if len(perspectives) == 0 {
		perspectives = append(perspectives, domain.Perspective{
			Text:          text,
			EmotionScore:  copyScore(score),
			Type:          domain.PerspectiveConflict,
			SourceEntryID: entryID,
		})
	}

	return perspectives
}

// classify returns match when clause contains one of keywords, otherwise conflict.
func classify(clause string, keywords []string, match domain.PerspectiveType) domain.PerspectiveType {
	if containsAny(strings.ToLower(clause), keywords) {
		return match
	}
	return domain.PerspectiveConflict
}

func scale(score *float64, factor float64) *float64 {
	if score == nil {
		return nil
	}
	v := *score * factor
	return &v
}

func copyScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	v := *score
	return &v
}
