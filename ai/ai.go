package ai

import (
	"context"
	"log"
	"time"

	"github.com/OpsaAI/OpsaAI/config"
	"github.com/OpsaAI/OpsaAI/fault"
)

const providerTimeout = 30 * time.Second

// FallbackProvider is the provider name reported when a hosted backend failed
// and the mock answered in its place.
const FallbackProvider = "mock-fallback"

// Role values follow the chat completion convention shared by all backends.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Provider is a single AI backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	Chat(ctx context.Context, messages []Message) (string, error)
	AnalyzeInfrastructure(ctx context.Context, content, filename string) (string, error)
	GenerateVisualization(ctx context.Context, content, filename string) (*Diagram, error)
}

// Response carries generated text plus provenance so callers can tell real
// provider output from mock output.
type Response struct {
	Content  string
	Provider string
	IsMock   bool
}

// DiagramResponse is the visualization counterpart of Response.
type DiagramResponse struct {
	Diagram  *Diagram
	Provider string
	IsMock   bool
}

// Service routes requests to the configured provider and falls back to the
// mock when that provider fails. When the mock itself is the configured
// provider there is nothing to fall back to and errors propagate.
type Service struct {
	kind     config.ProviderKind
	provider Provider
	mock     *Mock
	logger   *log.Logger
}

func NewService(cfg config.Config, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}

	svc := &Service{
		kind:   cfg.Provider,
		mock:   NewMock(),
		logger: logger,
	}

	switch cfg.Provider {
	case config.ProviderHuggingFace:
		if cfg.HuggingFace.APIKey == "" {
			return nil, fault.New(fault.Config, "huggingface provider selected without an API key")
		}
		svc.provider = NewHuggingFace(cfg.HuggingFace)
	case config.ProviderOllama:
		if cfg.Ollama.BaseURL == "" {
			return nil, fault.New(fault.Config, "ollama provider selected without a base URL")
		}
		svc.provider = NewOllama(cfg.Ollama)
	case config.ProviderMock:
		svc.provider = svc.mock
	default:
		return nil, fault.New(fault.Config, "unknown provider %q", cfg.Provider)
	}

	logger.Printf("ai service using provider %s", cfg.Provider)
	return svc, nil
}

// NewServiceWithProvider wires an explicit provider, bypassing configuration.
func NewServiceWithProvider(kind config.ProviderKind, provider Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		kind:     kind,
		provider: provider,
		mock:     NewMockWithoutLatency(),
		logger:   logger,
	}
}

// Provider reports the configured backend name.
func (s *Service) Provider() string { return string(s.kind) }

// IsMock reports whether the configured backend is the mock.
func (s *Service) IsMock() bool { return s.kind == config.ProviderMock }

func (s *Service) GenerateText(ctx context.Context, prompt string, maxTokens int) (*Response, error) {
	return s.execute(ctx, "generate", func(ctx context.Context, p Provider) (string, error) {
		return p.GenerateText(ctx, prompt, maxTokens)
	})
}

func (s *Service) Chat(ctx context.Context, messages []Message) (*Response, error) {
	return s.execute(ctx, "chat", func(ctx context.Context, p Provider) (string, error) {
		return p.Chat(ctx, messages)
	})
}

func (s *Service) AnalyzeInfrastructure(ctx context.Context, content, filename string) (*Response, error) {
	return s.execute(ctx, "analyze", func(ctx context.Context, p Provider) (string, error) {
		return p.AnalyzeInfrastructure(ctx, content, filename)
	})
}

// GenerateVisualization follows the same fallback contract as the text
// operations but returns a structured diagram.
func (s *Service) GenerateVisualization(ctx context.Context, content, filename string) (*DiagramResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	diagram, err := s.provider.GenerateVisualization(callCtx, content, filename)
	if err == nil {
		return &DiagramResponse{Diagram: diagram, Provider: string(s.kind), IsMock: s.IsMock()}, nil
	}

	if s.IsMock() {
		return nil, fault.Wrap(fault.Internal, err)
	}

	kind := classifyProviderError(err)
	s.logger.Printf("provider %s visualize failed (%s), falling back to mock: %v", s.kind, kind, err)

	fallbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), providerTimeout)
	defer cancel()

	diagram, mockErr := s.mock.GenerateVisualization(fallbackCtx, content, filename)
	if mockErr != nil {
		return nil, fault.Wrap(fault.Internal, mockErr)
	}
	return &DiagramResponse{Diagram: diagram, Provider: FallbackProvider, IsMock: true}, nil
}

// execute calls the configured provider and, on any failure of a non-mock
// backend, retries the operation against the mock. The fallback runs on a
// fresh deadline detached from the caller's context because the original one
// may already have expired, which is exactly the failure being recovered
// from.
func (s *Service) execute(ctx context.Context, op string, call func(context.Context, Provider) (string, error)) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	content, err := call(callCtx, s.provider)
	if err == nil {
		return &Response{Content: content, Provider: string(s.kind), IsMock: s.IsMock()}, nil
	}

	if s.IsMock() {
		return nil, fault.Wrap(fault.Internal, err)
	}

	kind := classifyProviderError(err)
	s.logger.Printf("provider %s %s failed (%s), falling back to mock: %v", s.kind, op, kind, err)

	fallbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), providerTimeout)
	defer cancel()

	content, mockErr := call(fallbackCtx, s.mock)
	if mockErr != nil {
		return nil, fault.Wrap(fault.Internal, mockErr)
	}
	return &Response{Content: content, Provider: FallbackProvider, IsMock: true}, nil
}
