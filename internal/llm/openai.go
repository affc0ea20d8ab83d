// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/litreview/internal/httputil"
)

// openAIURL is the chat completions endpoint. Package-level var for test substitution.
var openAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	APIKey     string
	Model      string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the system role and prompt and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.Model
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}

	headers := map[string]string{"Authorization": "Bearer " + c.APIKey}
	if c.UserAgent != "" {
		headers["User-Agent"] = c.UserAgent
	}

	var resp chatResponse
	if err := httputil.PostJSON(ctx, c.Client, openAIURL, headers, body, &resp, c.MaxRetries); err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
