package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/OpsaAI/OpsaAI/ai"
	"github.com/OpsaAI/OpsaAI/embeddings"
	"github.com/OpsaAI/OpsaAI/fault"
	"github.com/OpsaAI/OpsaAI/index"
)

const (
	retrieveLimit     = 5
	previewLength     = 100
	groundedMaxTokens = 1000
)

// metadataKeywords route a question to the file-metadata path, where the
// model sees the whole file instead of retrieved chunks.
var metadataKeywords = []string{
	"file",
	"filename",
	"type",
	"what is",
	"analyze",
	"explain",
	"guide",
	"help",
}

// Service answers questions about uploaded documents.
type Service struct {
	index    *index.VectorIndex
	embedder embeddings.Embedder
	ai       *ai.Service
	logger   *log.Logger
}

func NewService(ix *index.VectorIndex, embedder embeddings.Embedder, aiSvc *ai.Service, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{index: ix, embedder: embedder, ai: aiSvc, logger: logger}
}

// Classify picks the answering mode by keyword match over the lowercased
// question.
func Classify(question string) Mode {
	lower := strings.ToLower(question)
	for _, keyword := range metadataKeywords {
		if strings.Contains(lower, keyword) {
			return ModeFileMetadata
		}
	}
	return ModeGroundedChat
}

// Retrieve returns the chunks of a document most similar to the question.
func (s *Service) Retrieve(documentID, question string, limit int) []RetrievedChunk {
	entries := s.index.Query(documentID, s.embedder.Embed(question), limit)

	chunks := make([]RetrievedChunk, len(entries))
	for i, entry := range entries {
		chunks[i] = RetrievedChunk{
			Text:          entry.Text,
			SequenceIndex: entry.SequenceIndex,
			Similarity:    entry.Similarity,
		}
	}
	return chunks
}

// Ask answers one question about one uploaded document.
func (s *Service) Ask(ctx context.Context, documentID, question string) (*Result, error) {
	if strings.TrimSpace(documentID) == "" || strings.TrimSpace(question) == "" {
		return nil, fault.New(fault.Validation, "fileId and question are required")
	}

	doc, ok := s.index.Document(documentID)
	if !ok {
		return nil, fault.New(fault.NotFound, "file not found: %s", documentID)
	}

	mode := Classify(question)
	s.logger.Printf("answering question about %s in mode %s", documentID, mode)

	if mode == ModeFileMetadata {
		return s.askMetadata(ctx, doc, question)
	}
	return s.askGrounded(ctx, doc, question)
}

// askMetadata hands the entire file to the analysis operation. Chunk
// retrieval is skipped on this path.
func (s *Service) askMetadata(ctx context.Context, doc index.Document, question string) (*Result, error) {
	resp, err := s.ai.AnalyzeInfrastructure(ctx, doc.RawContent, doc.FileName)
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:   resp.Content,
		Provider: resp.Provider,
		IsMock:   resp.IsMock,
		Mode:     ModeFileMetadata,
		FileName: doc.FileName,
		FileType: doc.FileType,
	}, nil
}

func (s *Service) askGrounded(ctx context.Context, doc index.Document, question string) (*Result, error) {
	chunks := s.Retrieve(doc.ID, question, retrieveLimit)
	if len(chunks) == 0 {
		return nil, fault.New(fault.NoContent, "no relevant content found")
	}

	resp, err := s.ai.GenerateText(ctx, buildPrompt(doc, question, chunks), groundedMaxTokens)
	if err != nil {
		return nil, err
	}

	previews := make([]string, len(chunks))
	for i, chunk := range chunks {
		previews[i] = truncate(chunk.Text, previewLength)
	}

	return &Result{
		Answer:     resp.Content,
		Provider:   resp.Provider,
		IsMock:     resp.IsMock,
		Mode:       ModeGroundedChat,
		ChunksUsed: len(chunks),
		Previews:   previews,
		FileName:   doc.FileName,
		FileType:   doc.FileType,
	}, nil
}

func buildPrompt(doc index.Document, question string, chunks []RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("You are OpsaAI, an assistant for infrastructure configuration files.\n")
	sb.WriteString(fmt.Sprintf("Answer the question using only the context below, taken from %s (%s).\n\n", doc.FileName, doc.FileType))

	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("[Context %d]\n%s\n\n", i+1, chunk.Text))
	}

	sb.WriteString(fmt.Sprintf("Question: %s\n\nAnswer:", question))
	return sb.String()
}

// truncate cuts text to at most limit bytes without splitting a UTF-8 rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
