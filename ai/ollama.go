package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OpsaAI/OpsaAI/config"
)

// Ollama talks to a local Ollama daemon through its chat API.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

func NewOllama(cfg config.OllamaConfig) *Ollama {
	host := strings.TrimRight(cfg.BaseURL, "/")
	if host == "" {
		host = "http://localhost:11434"
	}

	return &Ollama{
		host:  host,
		model: cfg.Model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (o *Ollama) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return o.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, maxTokens)
}

func (o *Ollama) Chat(ctx context.Context, messages []Message) (string, error) {
	return o.complete(ctx, messages, defaultMaxTokens)
}

func (o *Ollama) AnalyzeInfrastructure(ctx context.Context, content, filename string) (string, error) {
	prompt := analysisPrompt(content, filename)
	return o.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, analysisMaxTokens)
}

func (o *Ollama) GenerateVisualization(ctx context.Context, content, filename string) (*Diagram, error) {
	prompt := visualizationPrompt(content, filename)
	raw, err := o.complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, visualizationMaxTokens)
	if err != nil {
		return nil, err
	}
	return extractDiagramJSON(raw)
}

func (o *Ollama) complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	payload := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Options: ollamaOptions{
			NumPredict: maxTokens,
		},
	}

	payload.Messages = make([]ollamaChatMessage, len(messages))
	for i, msg := range messages {
		payload.Messages[i] = ollamaChatMessage{Role: msg.Role, Content: msg.Content}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ollama chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("read ollama chat error body: %w", readErr)
		}
		if len(data) > 0 {
			return "", fmt.Errorf("ollama chat API error: %s", string(data))
		}
		return "", fmt.Errorf("ollama chat API returned status %s", resp.Status)
	}

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	if parsed.Error != "" {
		return "", fmt.Errorf("ollama chat error: %s", parsed.Error)
	}

	return parsed.Message.Content, nil
}
