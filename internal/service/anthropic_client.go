package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicBaseURL          = "https://api.anthropic.com/v1"
	anthropicMessagesEndpoint = "/messages"
	anthropicModel            = "claude-sonnet-4-5"
	anthropicMaxTokens        = 4096
)

// LLMClient generates a Markdown compliance report from a free-form prompt.
// Used when no static filing profile matches the submitted form.
type LLMClient interface {
	GenerateReport(ctx context.Context, prompt string) (string, error)
}

type anthropicClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(apiKey string) LLMClient {
	return &anthropicClient{
		client: &http.Client{
			Timeout: 60 * time.Second, // the per-request context deadline is the real bound
		},
		baseURL: anthropicBaseURL,
		apiKey:  apiKey,
	}
}

// GenerateReport sends the prompt to the messages endpoint and returns the
// concatenated text blocks of the response. The caller's context deadline
// bounds the call; on expiry the request is cancelled and the error returned
// without retrying.
func (c *anthropicClient) GenerateReport(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("LLM API key is not configured")
	}

	requestBody := map[string]interface{}{
		"model":      anthropicModel,
		"max_tokens": anthropicMaxTokens,
		"system": "You are a compliance analyst. Produce a structured Markdown report with these " +
			"sections: Executive Summary, Requirements Checklist, Timeline, Risk Matrix, " +
			"Recommendations, References. Use tables for the timeline and risk matrix. " +
			"Close with a disclaimer that the report is not legal advice.",
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+anthropicMessagesEndpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read LLM response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("LLM API error: %s", errorResp.Error.Message)
		}
		return "", fmt.Errorf("LLM API error: HTTP %d", resp.StatusCode)
	}

	var msgResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}

	var out bytes.Buffer
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("LLM response contained no text content")
	}
	return out.String(), nil
}
