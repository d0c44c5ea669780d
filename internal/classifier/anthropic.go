package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	defaultModel  = "claude-sonnet-4-20250514"
	maxTags       = 5
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("classifier api key not set")

// Config configures the Anthropic classifier.
type Config struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// Result holds the model tags and category suggested for an entry
type Result struct {
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
}

// Classifier suggests model tags for journal entries via the Anthropic API
type Classifier struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// New creates a new Classifier. It returns ErrNoAPIKey when cfg has no key so
// callers can skip classification.
func New(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Classifier{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		url:    cfg.BaseURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.url == "" {
		c.url = defaultAPIURL
	}
	return c, nil
}

// Classify analyzes a transcript and returns normalized tag suggestions
func (c *Classifier) Classify(ctx context.Context, transcript string, existingTags []string) (*Result, error) {
	prompt := buildPrompt(transcript, existingTags)

	resp, err := c.callAPI(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	return parseResponse(resp)
}

func buildPrompt(transcript string, existingTags []string) string {
	var sb strings.Builder

	sb.WriteString("Tag this personal journal entry. Return JSON only.\n\n")
	sb.WriteString("Entry:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\n")

	if len(existingTags) > 0 {
		sb.WriteString("Tags already used in this journal (prefer reusing these when appropriate):\n")
		for _, tag := range existingTags {
			sb.WriteString("- ")
			sb.WriteString(tag)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Return a JSON object with this structure:
{
  "tags": ["tag-name", "other-tag"],
  "category": "work"
}

Rules:
- Use lowercase, hyphenated tag names (e.g., "self-doubt" not "Self Doubt")
- Suggest 1-5 tags about the themes and feelings in the entry
- "category" is one of: work, personal, errands, learning, or "" when none fits
- Reuse existing tags when they fit

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Classifier) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return apiResp.Content[0].Text, nil
}

func parseResponse(resp string) (*Result, error) {
	// Models sometimes wrap the JSON in a markdown code block
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var result Result
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	result.Tags = normalizeTags(result.Tags)
	result.Category = strings.ToLower(strings.TrimSpace(result.Category))
	return &result, nil
}

// normalizeTags lowercases and hyphenates tags, dropping empties and duplicates.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(strings.ToLower(tag)), "-")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
