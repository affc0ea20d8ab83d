// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/litreview/internal/httputil"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const claudeMaxTokens = 4096

// ClaudeClient calls the Claude Messages API.
type ClaudeClient struct {
	APIKey     string
	Model      string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt and concatenates the text blocks of the reply.
func (c *ClaudeClient) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.Model
	}

	body := claudeRequest{
		Model:     model,
		MaxTokens: claudeMaxTokens,
		System:    req.System,
		Messages: []claudeMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}

	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}
	if c.UserAgent != "" {
		headers["User-Agent"] = c.UserAgent
	}

	var resp claudeResponse
	if err := httputil.PostJSON(ctx, c.Client, claudeAPIURL, headers, body, &resp, c.MaxRetries); err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return sb.String(), nil
}
