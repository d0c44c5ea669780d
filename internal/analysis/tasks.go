package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pbaille/journal/internal/domain"
)

// fragmentSplitter breaks compound sentences into independent task candidates.
var fragmentSplitter = regexp.MustCompile(`(?i)(?: and |, )`)

// taskPatterns are tried in order against each fragment. Capture group 1 is
// the task text, running up to the next sentence terminator.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:I need to|I have to|I should|Need to|Have to|Should|Tomorrow I'm going to|I plan to|I'm going to) ([^.!?]+)`),
	regexp.MustCompile(`(?i)(?:Gotta|Need to|Have to) ([^.!?]+)`),
}

// duePatterns are tried in order against the task text; the whole match is the due date.
var duePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:by|before|on) (?:next |this )?(?:week|month|year|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`),
	regexp.MustCompile(`(?i)(?:in|after) (\d+) (?:days|weeks|months|years)`),
	regexp.MustCompile(`(?i)(?:by|before) (\d{1,2}/\d{1,2}/\d{4})`),
}

// categoryRule maps a task category to the keywords that indicate it.
type categoryRule struct {
	Category string
	Keywords []string
}

// categoryRules is the task taxonomy, checked in order.
var categoryRules = []categoryRule{
	{Category: "work", Keywords: []string{"work", "office", "meeting", "project", "deadline"}},
	{Category: "personal", Keywords: []string{"home", "family", "friend", "personal", "health"}},
	{Category: "errands", Keywords: []string{"buy", "shop", "grocery", "store", "appointment"}},
	{Category: "learning", Keywords: []string{"learn", "study", "read", "course", "class"}},
}

// ExtractTasks returns the tasks found in text, in fragment order. Fragments
// without a lead-in phrase are skipped.
func ExtractTasks(text, entryID string) []domain.Task {
	var tasks []domain.Task

	for _, fragment := range fragmentSplitter.Split(text, -1) {
		taskText, ok := matchTask(trimSpace(fragment))
		if !ok {
			continue
		}

		tasks = append(tasks, domain.Task{
			Text:          taskText,
			DueDate:       findDueDate(taskText),
			Status:        domain.TaskPending,
			Category:      categorize(taskText),
			SourceEntryID: entryID,
		})
	}

	return tasks
}

// matchTask applies at most one task pattern to a fragment.
func matchTask(fragment string) (string, bool) {
	for _, p := range taskPatterns {
		if m := p.FindStringSubmatch(fragment); m != nil {
			return trimSpace(m[1]), true
		}
	}
	return "", false
}

func findDueDate(taskText string) *string {
	for _, p := range duePatterns {
		if m := p.FindString(taskText); m != "" {
			return &m
		}
	}
	return nil
}

func categorize(taskText string) *string {
	lower := strings.ToLower(taskText)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.Keywords) {
			category := rule.Category
			return &category
		}
	}
	return nil
}

// containsAny reports whether lower contains any of the keywords.
func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// trimSpace trims unicode whitespace and the byte order mark. NEL is kept.
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
