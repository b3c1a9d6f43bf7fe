package ingestion

import (
	"regexp"
	"strings"

	"github.com/OpsaAI/OpsaAI/index"
)

const (
	// DefaultTargetChunkSize approximates 500 tokens at ~4 chars per token.
	DefaultTargetChunkSize = 2000

	// maxSubSplits bounds sentence sub-splitting per oversized paragraph
	// block. The final slot absorbs any remainder rather than overflowing.
	maxSubSplits = 1000
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// SplitChunks splits text into bounded, ordered chunks. Paragraphs are
// accumulated up to the target size; any block still larger than the target
// (a single giant paragraph) is re-split on sentence boundaries. Chunks are
// emitted in document order and numbered 0..n-1, so sequence indices are
// collision-free by construction. Empty or whitespace-only input yields no
// chunks; callers treat that as "no content found".
func SplitChunks(text string, targetSize int) []index.Chunk {
	if targetSize <= 0 {
		targetSize = DefaultTargetChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	blocks := accumulate(paragraphBreak.Split(text, -1), "\n\n", targetSize, maxAccumulated)

	chunks := make([]index.Chunk, 0, len(blocks))
	seq := 0
	for _, block := range blocks {
		if len(block) <= targetSize {
			chunks = append(chunks, index.Chunk{Text: block, SequenceIndex: seq})
			seq++
			continue
		}
		for _, sub := range accumulate(splitSentences(block), " ", targetSize, maxSubSplits) {
			chunks = append(chunks, index.Chunk{Text: sub, SequenceIndex: seq})
			seq++
		}
	}
	return chunks
}

// maxAccumulated is effectively unbounded for the paragraph pass.
const maxAccumulated = 1 << 30

// accumulate greedily packs parts into buffers of at most targetSize: when
// appending the next part would overflow a non-empty buffer, the buffer is
// flushed and the part starts a new one. The overflow check ignores the
// separator, so the effective bound is targetSize+len(sep). The final
// non-blank buffer is always flushed. Once maxParts-1 buffers exist, the last
// buffer absorbs everything left regardless of size.
func accumulate(parts []string, sep string, targetSize, maxParts int) []string {
	out := make([]string, 0)
	var buf strings.Builder

	flush := func() {
		if trimmed := strings.TrimSpace(buf.String()); trimmed != "" {
			out = append(out, trimmed)
		}
		buf.Reset()
	}

	for _, part := range parts {
		if buf.Len() > 0 && buf.Len()+len(part) > targetSize && len(out) < maxParts-1 {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(part)
	}
	flush()

	return out
}

// splitSentences breaks text after ". ", "! " or "? ", keeping the terminator
// with the preceding sentence. Text with no such boundary comes back whole.
func splitSentences(text string) []string {
	sentences := make([]string, 0)
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && isSpace(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			j := i + 1
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(text) {
		if tail := strings.TrimSpace(text[start:]); tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
