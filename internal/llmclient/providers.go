package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// providerEndpoints maps a provider name to its OpenAI-compatible chat
// completions endpoint. Groq and OpenRouter both speak the OpenAI wire
// format; Google is reached through the OpenAI-compatible endpoint of its
// Gemini API.
var providerEndpoints = map[string]string{
	"groq": "https://api.groq.com/openai/v1/chat/completions",
	"openrouter": "https://openrouter.ai/api/v1/chat/completions",
	"google": "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
}

var providerModels = map[string]string{
	"groq": "llama-3.3-70b-versatile",
	"openrouter": "meta-llama/llama-3.3-70b-instruct",
	"google": "gemini-2.0-flash",
}

type chatCompletionRequest struct {
	Model string `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens int `json:"max_tokens,omitempty"`
}

type chatCompletionMessage struct {
	Role string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

// HTTPChat is the callFn NewRoundRobin expects: a raw JSON-over-HTTP POST
// against whichever provider's OpenAI-compatible endpoint — http.NewRequest
// plus a short-timeout http.Client and manual JSON marshal/unmarshal,
// rather than a generated SDK client per provider.
func HTTPChat(ctx context.Context, provider, apiKey string, messages []Message, opts Options) (string, error) {
	endpoint, ok := providerEndpoints[provider]
	if !ok {
		return "", fmt.Errorf("llmclient: unknown provider %q", provider)
	}

	chatMessages := make([]chatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = chatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model: providerModels[provider],
		Messages: chatMessages,
		Temperature: opts.Temperature,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("llmclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llmclient: %s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llmclient: read %s response: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llmclient: %s returned status %d: %s", provider, resp.StatusCode, string(body))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llmclient: unmarshal %s response: %w", provider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llmclient: %s returned no choices", provider)
	}
	return parsed.Choices[0].Message.Content, nil
}
