package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VOYAGE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "journal.db"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndAnalyze(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 10 sample entries.")

	out, err = run(t, dir, "analyze")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Analyzed 10 entries with an average emotion score of 0.25. Found 0 unique tags, extracted 1 tasks, and identified 13 distinct perspectives.", lines[0])
	assert.Contains(t, out, "[3] sleep earlier")
	assert.Contains(t, out, "rational")
}

func TestAnalyzeFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "1", "transcript_user": "I need to finish the report by next week", "tags_user": ["work"], "emotion_score_score": 0.5}
	]`), 0o600))

	out, err := run(t, dir, "analyze", "--file", path, "--json")
	require.NoError(t, err)

	var result domain.ProcessedResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, map[string]int{"work": 1}, result.TagFrequencies)
	require.Len(t, result.Tasks, 1)
	require.NotNil(t, result.Tasks[0].DueDate)
	assert.Equal(t, "by next week", *result.Tasks[0].DueDate)
}

func TestAddShowAndTags(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "--no-classify", "--tag", "sleep", "--score", "0.3", "I know I should sleep, but I keep scrolling")
	require.NoError(t, err)
	assert.Contains(t, out, "Added entry: ")
	assert.Contains(t, out, "(skipped classification)")

	id := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(out, "Added entry: "), "\n", 2)[0])
	require.Len(t, id, 8)

	out, err = run(t, dir, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Score:   0.30")
	assert.Contains(t, out, "  - sleep\n")

	out, err = run(t, dir, "tags")
	require.NoError(t, err)
	assert.Contains(t, out, "   1  sleep")

	out, err = run(t, dir, "search", "scrolling")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	_, err = run(t, dir, "show", "does-not-exist")
	assert.Error(t, err)
}

func TestAdd_RequiresTranscript(t *testing.T) {
	_, err := run(t, t.TempDir(), "add")
	assert.Error(t, err)
}
