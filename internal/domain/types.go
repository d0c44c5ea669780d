package domain

import "time"

// Entry represents one journal-style voice entry
type Entry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AudioURL         *string   `json:"audio_url"`
	TranscriptRaw    string    `json:"transcript_raw"`
	TranscriptUser   string    `json:"transcript_user"`
	LanguageDetected string    `json:"language_detected"`
	LanguageRendered string    `json:"language_rendered"`
	TagsModel        []string  `json:"tags_model"`
	TagsUser         []string  `json:"tags_user"`
	Category         *string   `json:"category"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	EmotionScore     *float64  `json:"emotion_score_score"`
	Embedding        []float64 `json:"embedding"`
}

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is an actionable item inferred from an entry
type Task struct {
	Text          string     `json:"task_text"`
	DueDate       *string    `json:"due_date"`
	Status        TaskStatus `json:"status"`
	Category      *string    `json:"category"`
	SourceEntryID string     `json:"source_entry_id"`
}

// PerspectiveType classifies a perspective fragment
type PerspectiveType string

const (
	PerspectiveRational  PerspectiveType = "rational"
	PerspectiveEmotional PerspectiveType = "emotional"
	PerspectiveConflict  PerspectiveType = "conflict"
)

// Perspective is a text fragment holding one side of an internal conflict
type Perspective struct {
	Text          string          `json:"text"`
	EmotionScore  *float64        `json:"emotion_score"`
	Type          PerspectiveType `json:"perspective_type"`
	SourceEntryID string          `json:"source_entry_id"`
}

// ProcessedResult is the report produced from a set of entries
type ProcessedResult struct {
	Summary        string         `json:"summary"`
	TagFrequencies map[string]int `json:"tagFrequencies"`
	Tasks          []Task         `json:"tasks"`
	Perspectives   []Perspective  `json:"perspectives"`
}
