package sample

import (
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// Entries returns the sample journal entries used for seeding and demos.
// Each call returns fresh copies.
func Entries() []domain.Entry {
	return []domain.Entry{
		entry("1", "I kind of don't want to go to the party, but I also don't want them to think I'm avoiding them.",
			"I kind of don't want to go to the party, though I also don't want them to think I'm avoiding them.",
			"2025-05-10T08:00:00Z", "2025-05-10T08:05:00Z", 0.05),
		entry("2", "I turned down that opportunity. I think it was the right call, but there's still a small part of me that wonders.",
			"I turned down that opportunity. I think it was the right call, though there's still a small part of me that wonders.",
			"2025-05-11T08:00:00Z", "2025-05-11T08:05:00Z", 0.1),
		entry("3", "I know I should sleep earlier, but I always end up scrolling late into the night.",
			"I know I should sleep earlier, though I always end up scrolling late into the night.",
			"2025-05-12T08:00:00Z", "2025-05-12T08:05:00Z", 0.14),
		entry("4", "He made some good points, but I can't help feeling like I'm still right.",
			"He made some good points, though I can't help feeling like I'm still right.",
			"2025-05-13T08:00:00Z", "2025-05-13T08:05:00Z", 0.18),
		entry("5", "I said I'd help her out, and now I'm swamped. I don't want to back out, but I'm overwhelmed.",
			"I said I'd help her out, and now I'm swamped. I don't want to back out, though I'm overwhelmed.",
			"2025-05-14T08:00:00Z", "2025-05-14T08:05:00Z", 0.23),
		entry("6", "I planned to work out today, but I was exhausted from work. Now I feel guilty for skipping it.",
			"I planned to work out today, but I was exhausted from work. Now I feel guilty for skipping it.",
			"2025-05-15T08:00:00Z", "2025-05-15T08:05:00Z", 0.27),
		entry("7", "I told myself this was a smart long-term move, but honestly I think I just didn't want to deal with the current situation.",
			"I told myself this was a smart long-term move, but honestly I think I just didn't want to deal with the current situation.",
			"2025-05-16T08:00:00Z", "2025-05-16T08:05:00Z", 0.32),
		entry("8", "This relationship makes me happy, but there's always this quiet anxiety underneath.",
			"This relationship makes me happy, but there's always this quiet anxiety underneath.",
			"2025-05-17T08:00:00Z", "2025-05-17T08:05:00Z", 0.36),
		entry("9", "I know he's not right for me, but I still want to give it one more try.",
			"I know he's not right for me, but I still want to give it one more try.",
			"2025-05-18T08:00:00Z", "2025-05-18T08:05:00Z", 0.41),
		entry("10", "I said it doesn't bother me, but it actually does, more than I expected.",
			"I said it doesn't bother me, but it actually does, more than I expected.",
			"2025-05-19T08:00:00Z", "2025-05-19T08:05:00Z", 0.45),
	}
}

func entry(id, raw, user, created, updated string, score float64) domain.Entry {
	return domain.Entry{
		ID:               id,
		UserID:           "user1",
		TranscriptRaw:    raw,
		TranscriptUser:   user,
		LanguageDetected: "en",
		LanguageRendered: "en",
		TagsModel:        []string{},
		TagsUser:         []string{},
		CreatedAt:        mustTime(created),
		UpdatedAt:        mustTime(updated),
		EmotionScore:     &score,
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
