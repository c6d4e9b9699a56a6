package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codefionn/codereview/internal/logger"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements the Client interface with the official OpenAI SDK
// (chat completions). BaseURL lets it target OpenAI-compatible servers.
type OpenAIClient struct {
	model  string
	client openai.Client
}

// NewOpenAIClient constructs a client that talks to the OpenAI API. An empty
// baseURL uses the SDK default.
func NewOpenAIClient(apiKey, modelName, baseURL string, opts ...option.RequestOption) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai client requires an API key")
	}

	model := strings.TrimSpace(modelName)
	if model == "" {
		model = defaultOpenAIModel
	}

	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	options = append(options, opts...)

	return &OpenAIClient{
		model:  model,
		client: openai.NewClient(options...),
	}, nil
}

func (c *OpenAIClient) GetModelName() string {
	return c.model
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CompleteWithRequest(ctx, userPrompt(prompt, 0))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *OpenAIClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("openai completion request cannot be nil")
	}

	messages := convertMessagesToOpenAI(req)
	if len(messages) == 0 {
		return nil, fmt.Errorf("openai completion requires at least one message")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	logger.Debug("OpenAI: sending completion request for model %s (%d messages)", c.model, len(messages))

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", openAIStatusError(err))
	}

	if len(resp.Choices) == 0 {
		return &CompletionResponse{StopReason: "stop"}, nil
	}

	first := resp.Choices[0]
	return &CompletionResponse{
		Content:    first.Message.Content,
		StopReason: string(first.FinishReason),
		Usage: map[string]interface{}{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}

func openAIStatusError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return errors.Join(&StatusError{Provider: "openai", Code: apiErr.StatusCode, Body: apiErr.Message}, err)
	}
	return err
}

func convertMessagesToOpenAI(req *CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		switch strings.ToLower(msg.Role) {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
