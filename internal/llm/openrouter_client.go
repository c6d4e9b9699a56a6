package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/codefionn/codereview/internal/logger"
)

const (
	openRouterAPIBaseURL   = "https://openrouter.ai/api/v1"
	openRouterReferer      = "https://github.com/codefionn/codereview"
	openRouterAppTitle     = "codereview"
	defaultOpenRouterModel = "google/gemini-2.0-flash-001"
)

// OpenRouterClient implements the Client interface using the native OpenRouter API.
// It applies no client-side timeout; GuardedClient owns that.
type OpenRouterClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(apiKey, modelID string) (Client, error) {
	return newOpenRouterClient(apiKey, modelID, openRouterAPIBaseURL, &http.Client{})
}

func newOpenRouterClient(apiKey, modelID, baseURL string, httpClient *http.Client) (*OpenRouterClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openrouter client requires an API key")
	}

	model := strings.TrimSpace(modelID)
	if model == "" {
		model = defaultOpenRouterModel
	}

	return &OpenRouterClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

func (c *OpenRouterClient) GetModelName() string {
	return c.model
}

func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CompleteWithRequest(ctx, userPrompt(prompt, 0))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *OpenRouterClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("openrouter completion request cannot be nil")
	}

	payload, err := c.buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newChatRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	logger.Debug("OpenRouter: sending completion request for model %s", c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter completion failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openrouter completion failed: %w", &StatusError{
			Provider: "openrouter",
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		})
	}

	var chatResp openRouterChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("openrouter completion failed: %w", err)
	}

	if chatResp.Error != nil {
		// OpenRouter reports upstream failures with a 200 and an error object.
		return nil, fmt.Errorf("openrouter completion failed: %w", &StatusError{
			Provider: "openrouter",
			Code:     chatResp.Error.Code,
			Body:     chatResp.Error.Message,
		})
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message == nil {
		logger.Debug("OpenRouter: no valid choices in response, returning stop reason")
		return &CompletionResponse{StopReason: "stop", Usage: chatResp.Usage}, nil
	}

	first := chatResp.Choices[0]
	stopReason := first.FinishReason
	if strings.TrimSpace(stopReason) == "" {
		stopReason = "stop"
	}

	return &CompletionResponse{
		Content:    extractOpenRouterText(first.Message.Content),
		StopReason: stopReason,
		Usage:      chatResp.Usage,
	}, nil
}

func (c *OpenRouterClient) buildChatRequest(req *CompletionRequest) (*openRouterChatRequest, error) {
	messages := make([]openRouterChatMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, openRouterChatMessage{Role: "system", Content: system})
	}
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		role := strings.TrimSpace(strings.ToLower(msg.Role))
		if role == "" {
			role = "user"
		}
		messages = append(messages, openRouterChatMessage{Role: role, Content: msg.Content})
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("openrouter completion requires at least one message")
	}

	payload := &openRouterChatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.Temperature != 0 {
		temp := req.Temperature
		payload.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	return payload, nil
}

func (c *OpenRouterClient) newChatRequest(ctx context.Context, payload *openRouterChatRequest) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openrouter failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterAppTitle)

	return req, nil
}

// extractOpenRouterText flattens string or multipart message content.
func extractOpenRouterText(content interface{}) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		var sb strings.Builder
		for _, part := range v {
			block, ok := part.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := block["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String()
	default:
		return fmt.Sprint(v)
	}
}

type openRouterChatRequest struct {
	Model       string                  `json:"model"`
	Messages    []openRouterChatMessage `json:"messages"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
}

type openRouterChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterChatResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Usage   map[string]interface{} `json:"usage,omitempty"`
	Choices []openRouterChatChoice `json:"choices"`
	Error   *openRouterError       `json:"error,omitempty"`
}

type openRouterChatChoice struct {
	Index        int                            `json:"index"`
	FinishReason string                         `json:"finish_reason"`
	Message      *openRouterChatResponseMessage `json:"message"`
}

type openRouterChatResponseMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type openRouterError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
