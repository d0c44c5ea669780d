package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/embedding"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no entry matches an id or id prefix.
var ErrNotFound = errors.New("entry not found")

const entryColumns = `e.id, e.user_id, e.audio_url, e.transcript_raw, e.transcript_user,
	e.language_detected, e.language_rendered, e.tags_model, e.tags_user, e.category,
	e.emotion_score, e.created_at, e.updated_at, v.vector`

const selectEntries = "SELECT " + entryColumns + " FROM entries e LEFT JOIN embeddings v ON v.entry_id = e.id"

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// NewEntry holds the caller-supplied fields of an entry to create.
type NewEntry struct {
	UserID         string   `json:"user_id"`
	AudioURL       *string  `json:"audio_url,omitempty"`
	TranscriptRaw  string   `json:"transcript_raw"`
	TranscriptUser string   `json:"transcript_user,omitempty"`
	Language       string   `json:"language,omitempty"`
	TagsUser       []string `json:"tags_user,omitempty"`
	Category       *string  `json:"category,omitempty"`
	EmotionScore   *float64 `json:"emotion_score,omitempty"`
}

// AddEntry creates a new entry and returns it. The user transcript defaults to
// the raw transcript and the language to "en".
func (s *Store) AddEntry(in NewEntry) (*domain.Entry, error) {
	now := time.Now().UTC()

	entry := domain.Entry{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		AudioURL:         in.AudioURL,
		TranscriptRaw:    in.TranscriptRaw,
		TranscriptUser:   in.TranscriptUser,
		LanguageDetected: in.Language,
		LanguageRendered: in.Language,
		TagsModel:        []string{},
		TagsUser:         in.TagsUser,
		Category:         in.Category,
		CreatedAt:        now,
		UpdatedAt:        now,
		EmotionScore:     in.EmotionScore,
	}
	if entry.TranscriptUser == "" {
		entry.TranscriptUser = entry.TranscriptRaw
	}
	if entry.LanguageDetected == "" {
		entry.LanguageDetected, entry.LanguageRendered = "en", "en"
	}
	if entry.TagsUser == nil {
		entry.TagsUser = []string{}
	}

	if err := s.ImportEntry(entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ImportEntry inserts an entry keeping its id and timestamps. An existing row
// is updated in place so its embedding survives; model tags and category are
// only overwritten when the imported entry carries them.
func (s *Store) ImportEntry(e domain.Entry) error {
	tagsModel, err := encodeTags(e.TagsModel)
	if err != nil {
		return err
	}
	tagsUser, err := encodeTags(e.TagsUser)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO entries (id, user_id, audio_url, transcript_raw, transcript_user,
			language_detected, language_rendered, tags_model, tags_user, category,
			emotion_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			audio_url = excluded.audio_url,
			transcript_raw = excluded.transcript_raw,
			transcript_user = excluded.transcript_user,
			language_detected = excluded.language_detected,
			language_rendered = excluded.language_rendered,
			tags_model = CASE WHEN excluded.tags_model = '[]' THEN entries.tags_model ELSE excluded.tags_model END,
			tags_user = excluded.tags_user,
			category = COALESCE(excluded.category, entries.category),
			emotion_score = excluded.emotion_score,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		e.ID, e.UserID, e.AudioURL, e.TranscriptRaw, e.TranscriptUser,
		e.LanguageDetected, e.LanguageRendered, tagsModel, tagsUser, e.Category,
		e.EmotionScore, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("import entry: %w", err)
	}

	if len(e.Embedding) > 0 {
		return s.SaveEmbedding(e.ID, e.Embedding, "imported")
	}
	return nil
}

// GetEntry retrieves an entry by ID
func (s *Store) GetEntry(id string) (*domain.Entry, error) {
	entries, err := s.queryEntries(selectEntries+" WHERE e.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// ResolveID expands an id or unique id prefix to the full entry id.
func (s *Store) ResolveID(prefix string) (string, error) {
	var id string
	err := s.db.QueryRow("SELECT id FROM entries WHERE id = ?", prefix).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("resolve id: %w", err)
	}

	rows, err := s.db.Query(`SELECT id FROM entries WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(prefix)+"%")
	if err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", ErrNotFound
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("ambiguous id prefix %q", prefix)
	}
}

// ListEntries returns recent entries with pagination
func (s *Store) ListEntries(limit, offset int) ([]domain.Entry, error) {
	entries, err := s.queryEntries(selectEntries+" ORDER BY e.created_at DESC, e.id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// AllEntries returns every entry, oldest first.
func (s *Store) AllEntries() ([]domain.Entry, error) {
	entries, err := s.queryEntries(selectEntries + " ORDER BY e.created_at ASC, e.id ASC")
	if err != nil {
		return nil, fmt.Errorf("all entries: %w", err)
	}
	return entries, nil
}

// SearchEntries performs a simple text search on the user transcript
func (s *Store) SearchEntries(query string) ([]domain.Entry, error) {
	entries, err := s.queryEntries(
		selectEntries+` WHERE e.transcript_user LIKE ? ESCAPE '\' ORDER BY e.created_at DESC`,
		"%"+escapeLike(query)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return entries, nil
}

// SetModelTags replaces the model-generated tags of an entry and, when
// category is non-nil, its category.
func (s *Store) SetModelTags(id string, tags []string, category *string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(
		"UPDATE entries SET tags_model = ?, category = COALESCE(?, category), updated_at = ? WHERE id = ?",
		encoded, category, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update tags: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveEmbedding stores the vector of an entry, replacing any previous one.
func (s *Store) SaveEmbedding(entryID string, vector []float64, model string) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (entry_id, vector, model, created_at) VALUES (?, ?, ?, ?)",
		entryID, string(data), model, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// SimilarEntry is an entry ranked by embedding similarity
type SimilarEntry struct {
	Entry domain.Entry `json:"entry"`
	Score float64      `json:"score"`
}

// FindSimilar returns up to k entries whose embeddings are closest to vector,
// skipping excludeID and vectors of a different length.
func (s *Store) FindSimilar(vector []float64, k int, excludeID string) ([]SimilarEntry, error) {
	entries, err := s.queryEntries(selectEntries+" WHERE v.vector IS NOT NULL AND e.id != ?", excludeID)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}

	var similar []SimilarEntry
	for _, e := range entries {
		if len(e.Embedding) != len(vector) {
			continue
		}
		similar = append(similar, SimilarEntry{
			Entry: e,
			Score: embedding.CosineSimilarity(vector, e.Embedding),
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})
	if k >= 0 && len(similar) > k {
		similar = similar[:k]
	}
	return similar, nil
}

func (s *Store) queryEntries(query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (domain.Entry, error) {
	var (
		e                   domain.Entry
		tagsModel, tagsUser string
		vector              sql.NullString
	)
	err := rows.Scan(&e.ID, &e.UserID, &e.AudioURL, &e.TranscriptRaw, &e.TranscriptUser,
		&e.LanguageDetected, &e.LanguageRendered, &tagsModel, &tagsUser, &e.Category,
		&e.EmotionScore, &e.CreatedAt, &e.UpdatedAt, &vector)
	if err != nil {
		return e, fmt.Errorf("scan entry: %w", err)
	}

	if e.TagsModel, err = decodeTags(tagsModel); err != nil {
		return e, err
	}
	if e.TagsUser, err = decodeTags(tagsUser); err != nil {
		return e, err
	}
	if vector.Valid {
		if err := json.Unmarshal([]byte(vector.String), &e.Embedding); err != nil {
			return e, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
