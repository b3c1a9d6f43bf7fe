package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/OpsaAI/OpsaAI/config"
)

// HuggingFace talks to the Hugging Face inference router through its
// OpenAI-compatible chat completion endpoint.
type HuggingFace struct {
	client *openai.Client
	model  string
}

func NewHuggingFace(cfg config.HuggingFaceConfig) *HuggingFace {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &HuggingFace{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (h *HuggingFace) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return h.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, maxTokens)
}

func (h *HuggingFace) Chat(ctx context.Context, messages []Message) (string, error) {
	return h.complete(ctx, messages, defaultMaxTokens)
}

func (h *HuggingFace) AnalyzeInfrastructure(ctx context.Context, content, filename string) (string, error) {
	prompt := analysisPrompt(content, filename)
	return h.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, analysisMaxTokens)
}

func (h *HuggingFace) GenerateVisualization(ctx context.Context, content, filename string) (*Diagram, error) {
	prompt := visualizationPrompt(content, filename)
	raw, err := h.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, visualizationMaxTokens)
	if err != nil {
		return nil, err
	}
	return extractDiagramJSON(raw)
}

func (h *HuggingFace) complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     h.model,
		MaxTokens: maxTokens,
	}

	req.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := h.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create huggingface chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("huggingface chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
