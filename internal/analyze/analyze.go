// Package analyze looks up words and sentences against a chat-completions
// style language service. The service is asked to respond with a JSON
// object; transport failures and malformed payloads surface as errors, and
// the reader decides how to present them.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source is a citation attached to an analysis.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WordAnalysis is the structured result of a word lookup.
type WordAnalysis struct {
	Word           string   `json:"word"`
	Phonetic       string   `json:"phonetic,omitempty"`
	PartOfSpeech   string   `json:"partOfSpeech"`
	Meaning        string   `json:"meaning"`
	ChineseMeaning string   `json:"chineseMeaning"`
	Examples       []string `json:"examples"`
	Synonyms       []string `json:"synonyms"`
	Sources        []Source `json:"sources,omitempty"`
}

// StructurePart is one clause of a sentence breakdown.
type StructurePart struct {
	Part        string `json:"part"`
	Explanation string `json:"explanation"`
}

// VocabEntry is one notable word pulled from a sentence.
type VocabEntry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// SentenceAnalysis is the structured result of a sentence lookup.
type SentenceAnalysis struct {
	Original      string          `json:"original"`
	Translation   string          `json:"translation"`
	Structure     []StructurePart `json:"structure"`
	GrammarPoints []string        `json:"grammarPoints"`
	KeyVocabulary []VocabEntry    `json:"keyVocabulary"`
	Sources       []Source        `json:"sources,omitempty"`
}

// Analyzer is the lookup port the reader depends on.
type Analyzer interface {
	Word(ctx context.Context, word string) (*WordAnalysis, error)
	Sentence(ctx context.Context, sentence string) (*SentenceAnalysis, error)
}

// ErrNoAnalyzer is returned by lookups when no service is configured.
var ErrNoAnalyzer = errors.New("analyze: no analysis service configured")

const (
	defaultModel   = "deepseek-chat"
	defaultTimeout = 30 * time.Second

	systemPrompt = "You are a professional English teacher. Return ONLY valid JSON."
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint string
	model    string
	key      string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model name sent with each request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given chat-completions endpoint. key
// may be empty for services that do not authenticate.
func NewClient(endpoint, key string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    defaultModel,
		key:      key,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Word implements Analyzer.
func (c *Client) Word(ctx context.Context, word string) (*WordAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the English word: %q. Return a JSON object with: word, phonetic, partOfSpeech, meaning (EN), chineseMeaning, examples (string[]), synonyms (string[]). Provide modern usage and context if possible.`, word)

	var out WordAnalysis
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("word lookup: %w", err)
	}
	out.Sources = dedupeSources(out.Sources)
	return &out, nil
}

// Sentence implements Analyzer.
func (c *Client) Sentence(ctx context.Context, sentence string) (*SentenceAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze this sentence: %q. Return JSON with: original, translation (CN), structure (array: {part, explanation}), grammarPoints (string[]), keyVocabulary (array: {word, meaning}). Search for context if this looks like a quote or famous passage.`, sentence)

	var out SentenceAnalysis
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("sentence lookup: %w", err)
	}
	out.Sources = dedupeSources(out.Sources)
	return &out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete posts one chat-completions request and unmarshals the JSON body
// of the first choice into v.
func (c *Client) complete(ctx context.Context, prompt string, v any) error {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return errors.New("response contained no choices")
	}
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), v); err != nil {
		return fmt.Errorf("malformed analysis payload: %w", err)
	}
	return nil
}

// apiError extracts the service's message field when present and falls back
// to the HTTP status.
func apiError(status int, body []byte) error {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return errors.New(e.Message)
	}
	return fmt.Errorf("analysis service returned %d", status)
}

// dedupeSources drops citations whose URL has already been seen, keeping
// first occurrence order.
func dedupeSources(sources []Source) []Source {
	if len(sources) < 2 {
		return sources
	}
	seen := make(map[string]bool, len(sources))
	out := sources[:0]
	for _, s := range sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}
