package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestExtractTasks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.Task
	}{
		{
			name: "due date relative marker",
			text: "I need to finish the report by next week",
			want: []domain.Task{
				{Text: "finish the report by next week", DueDate: strPtr("by next week"), Status: domain.TaskPending, SourceEntryID: "e1"},
			},
		},
		{
			name: "second fragment without lead-in is skipped",
			text: "I need to buy groceries and finish the work report",
			want: []domain.Task{
				{Text: "buy groceries", Status: domain.TaskPending, Category: strPtr("errands"), SourceEntryID: "e1"},
			},
		},
		{
			name: "two lead-ins yield two tasks",
			text: "I need to buy groceries and I have to finish the work report",
			want: []domain.Task{
				{Text: "buy groceries", Status: domain.TaskPending, Category: strPtr("errands"), SourceEntryID: "e1"},
				{Text: "finish the work report", Status: domain.TaskPending, Category: strPtr("work"), SourceEntryID: "e1"},
			},
		},
		{
			name: "second pattern group",
			text: "Gotta call mom before Friday",
			want: []domain.Task{
				{Text: "call mom before Friday", DueDate: strPtr("before Friday"), Status: domain.TaskPending, SourceEntryID: "e1"},
			},
		},
		{
			name: "relative offset",
			text: "I have to submit the project in 3 weeks",
			want: []domain.Task{
				{Text: "submit the project in 3 weeks", DueDate: strPtr("in 3 weeks"), Status: domain.TaskPending, Category: strPtr("work"), SourceEntryID: "e1"},
			},
		},
		{
			name: "absolute date",
			text: "Need to renew my passport by 12/31/2025",
			want: []domain.Task{
				{Text: "renew my passport by 12/31/2025", DueDate: strPtr("by 12/31/2025"), Status: domain.TaskPending, SourceEntryID: "e1"},
			},
		},
		{
			name: "uppercase connective still splits",
			text: "I need to study for the exam AND I should call my friend on this Monday",
			want: []domain.Task{
				{Text: "study for the exam", Status: domain.TaskPending, Category: strPtr("learning"), SourceEntryID: "e1"},
				{Text: "call my friend on this Monday", DueDate: strPtr("on this Monday"), Status: domain.TaskPending, Category: strPtr("personal"), SourceEntryID: "e1"},
			},
		},
		{
			name: "comma splits",
			text: "I'm going to read a book, I plan to visit home after 2 days",
			want: []domain.Task{
				{Text: "read a book", Status: domain.TaskPending, Category: strPtr("learning"), SourceEntryID: "e1"},
				{Text: "visit home after 2 days", DueDate: strPtr("after 2 days"), Status: domain.TaskPending, Category: strPtr("personal"), SourceEntryID: "e1"},
			},
		},
		{
			name: "capture stops at sentence terminator",
			text: "I should stretch. Then breakfast!",
			want: []domain.Task{
				{Text: "stretch", Status: domain.TaskPending, SourceEntryID: "e1"},
			},
		},
		{
			name: "no lead-in",
			text: "I had a great day today",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTasks(tt.text, "e1")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTasks_KeywordInLeadInIgnored(t *testing.T) {
	// Category and due date only look at the captured task text.
	tasks := ExtractTasks("I should work on it", "e1")
	require.Len(t, tasks, 1)
	assert.Equal(t, "work on it", tasks[0].Text)
	require.NotNil(t, tasks[0].Category)
	assert.Equal(t, "work", *tasks[0].Category)

	tasks = ExtractTasks("Tomorrow I'm going to relax", "e1")
	require.Len(t, tasks, 1)
	assert.Equal(t, "relax", tasks[0].Text)
	assert.Nil(t, tasks[0].DueDate)
	assert.Nil(t, tasks[0].Category)
}

func TestCategorize_FirstRuleWins(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"buy a gift for the office party", "work"},
		{"read up on family history", "personal"},
		{"book a dentist appointment", "errands"},
		{"take an online course", "learning"},
		{"Prepare the MEETING notes", "work"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := categorize(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, categorize("go for a walk"))
}

func TestFindDueDate_FirstFormWins(t *testing.T) {
	got := findDueDate("pay rent by 1/2/2026 or on Friday")
	require.NotNil(t, got)
	assert.Equal(t, "on Friday", *got)

	assert.Nil(t, findDueDate("someday maybe"))
}

func TestExtractTasks_UnanchoredLeadIn(t *testing.T) {
	tasks := ExtractTasks("I know I should sleep, but I keep scrolling", "e2")
	require.Len(t, tasks, 1)
	assert.Equal(t, "sleep", tasks[0].Text)
	assert.Equal(t, "e2", tasks[0].SourceEntryID)
	assert.Equal(t, domain.TaskPending, tasks[0].Status)
}

func TestExtractTasks_CaseInsensitiveLeadIn(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.Task
	}{
		{
			name: "mixed case first group",
			text: "i NEED TO call the office",
			want: []domain.Task{
				{Text: "call the office", Status: domain.TaskPending, Category: strPtr("work"), SourceEntryID: "e1"},
			},
		},
		{
			name: "upper case second group keeps due date casing",
			text: "GOTTA call mom BEFORE friday",
			want: []domain.Task{
				{Text: "call mom BEFORE friday", DueDate: strPtr("BEFORE friday"), Status: domain.TaskPending, SourceEntryID: "e1"},
			},
		},
		{
			name: "lower case multi-word lead-in",
			text: "tomorrow i'm going to study french",
			want: []domain.Task{
				{Text: "study french", Status: domain.TaskPending, Category: strPtr("learning"), SourceEntryID: "e1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTasks(tt.text, "e1"))
		})
	}
}

func TestExtractTasks_TrimsByteOrderMark(t *testing.T) {
	tasks := ExtractTasks("\ufeffI need to buy milk\ufeff", "e1")
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Text)
}

func TestTrimSpace(t *testing.T) {
	assert.Equal(t, "buy milk", trimSpace("\u00a0\t buy milk\u3000\ufeff\n"))
	assert.Equal(t, "\u0085buy milk", trimSpace("\u0085buy milk "))
}
