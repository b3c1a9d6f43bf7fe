package ingestion

import (
	"log"

	"github.com/google/uuid"

	"github.com/OpsaAI/OpsaAI/fault"
	"github.com/OpsaAI/OpsaAI/index"
)

// Service runs the upload pipeline: validate, parse, chunk, embed, index.
type Service struct {
	index  *index.VectorIndex
	logger *log.Logger
}

func NewService(ix *index.VectorIndex, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{index: ix, logger: logger}
}

type UploadResult struct {
	DocumentID string
	FileName   string
	FileType   string
	FileSize   int64
	ChunkCount int
}

// Upload validates, parses, chunks and indexes one uploaded file under a
// fresh document id.
func (s *Service) Upload(fileName string, data []byte) (*UploadResult, error) {
	if err := ValidateUpload(fileName, int64(len(data))); err != nil {
		return nil, err
	}

	content, err := ParseContent(data, DetectFormat(fileName))
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err)
	}

	chunks := SplitChunks(content, DefaultTargetChunkSize)
	if len(chunks) == 0 {
		return nil, fault.New(fault.Validation, "no content found in file")
	}

	doc := index.Document{
		ID:         uuid.NewString(),
		FileName:   fileName,
		FileType:   FileType(fileName),
		RawContent: content,
	}
	s.index.Add(doc, chunks)
	s.logger.Printf("stored %d chunks for file %s (%s)", len(chunks), doc.ID, doc.FileName)

	return &UploadResult{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		FileType:   doc.FileType,
		FileSize:   int64(len(data)),
		ChunkCount: len(chunks),
	}, nil
}
