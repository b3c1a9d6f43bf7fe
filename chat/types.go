package chat

// Mode classifies how a question was answered.
type Mode string

const (
	// ModeFileMetadata answers questions about the file itself using its full
	// content.
	ModeFileMetadata Mode = "file-metadata-question"
	// ModeGroundedChat answers from the most similar retrieved chunks.
	ModeGroundedChat Mode = "grounded-chat"
)

// RetrievedChunk is one similarity hit as surfaced to the caller.
type RetrievedChunk struct {
	Text          string
	SequenceIndex int
	Similarity    float64
}

// Result is the full answer to one question.
type Result struct {
	Answer     string
	Provider   string
	IsMock     bool
	Mode       Mode
	ChunksUsed int
	Previews   []string
	FileName   string
	FileType   string
}
