package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"LaunchDigest/internal/config"
	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const maxDocChars = 6000

// ChatGPTClient implements ports.Summarizer backed by OpenAI-compatible chat APIs.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Summarizer = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Highlights asks the model to condense documentation text into an overview,
// problems solved and benefits, answered as JSON.
func (c *ChatGPTClient) Highlights(ctx context.Context, subject, docText string) (domain.Highlights, error) {
	if c == nil {
		return domain.Highlights{}, fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Highlights{}, fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": userPrompt(subject, docText)},
		},
	})
	if err != nil {
		return domain.Highlights{}, fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Highlights{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Highlights{}, fmt.Errorf("request highlights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Highlights{}, fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Highlights{}, fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return domain.Highlights{}, fmt.Errorf("chatgpt response has no choices")
	}

	return parseHighlights(decoded.Choices[0].Message.Content)
}

func parseHighlights(content string) (domain.Highlights, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var h domain.Highlights
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &h); err != nil {
		return domain.Highlights{}, fmt.Errorf("parse highlights: %w", err)
	}
	return h, nil
}

func userPrompt(subject, docText string) string {
	docText = truncateUTF8(docText, maxDocChars)
	return fmt.Sprintf(`Service: %s

Documentation:
%s

Reply with JSON only: {"overview": "...", "problems_solved": ["..."], "benefits": ["..."]}. At most five items per list.`, subject, docText)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You summarize cloud service documentation for a technical presentation."
	}
	return prompt
}
