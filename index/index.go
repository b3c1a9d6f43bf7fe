// Package index holds the in-memory vector index and document registry.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/OpsaAI/OpsaAI/embeddings"
)

const defaultQueryLimit = 5

// Document is one uploaded file as registered at upload time. Immutable after
// creation; removed only by an explicit delete.
type Document struct {
	ID         string
	FileName   string
	FileType   string
	RawContent string
}

// Chunk is a contiguous slice of a document's content.
type Chunk struct {
	Text          string
	SequenceIndex int
}

// Entry is a chunk plus its embedding as stored in the index. Similarity is
// transient: populated only on query results, never persisted.
type Entry struct {
	ID            string
	DocumentID    string
	Text          string
	SequenceIndex int
	Vector        []float32
	Similarity    float64
}

// Stats reports current index size for health introspection.
type Stats struct {
	TotalChunks int
	Documents   int
}

// VectorIndex is a process-wide in-memory store of embedded chunks keyed by
// {documentID}_{sequenceIndex}. The maps are guarded by a read-write mutex so
// queries can run concurrently with writes to unrelated documents. Nothing is
// persisted across restarts; durable storage is an external concern.
type VectorIndex struct {
	mu       sync.RWMutex
	embedder embeddings.Embedder
	entries  map[string]Entry
	docs     map[string]Document
}

func New(embedder embeddings.Embedder) *VectorIndex {
	return &VectorIndex{
		embedder: embedder,
		entries:  make(map[string]Entry),
		docs:     make(map[string]Document),
	}
}

// EntryID builds the deterministic storage key for a document chunk, which
// makes re-indexing idempotent.
func EntryID(documentID string, sequenceIndex int) string {
	return fmt.Sprintf("%s_%d", documentID, sequenceIndex)
}

// Add embeds and stores the chunks of a document. Re-adding the same document
// id upserts entries per sequence index; entries left over from a previously
// larger chunk set stay behind, so callers wanting a clean replace must call
// DeleteDocument first.
func (ix *VectorIndex) Add(doc Document, chunks []Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.docs[doc.ID] = doc
	for _, chunk := range chunks {
		id := EntryID(doc.ID, chunk.SequenceIndex)
		ix.entries[id] = Entry{
			ID:            id,
			DocumentID:    doc.ID,
			Text:          chunk.Text,
			SequenceIndex: chunk.SequenceIndex,
			Vector:        ix.embedder.Embed(chunk.Text),
		}
	}
}

// Document returns the registered document for id.
func (ix *VectorIndex) Document(id string) (Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[id]
	return doc, ok
}

// Query returns up to limit entries of the given document ranked by cosine
// similarity to the query vector, most similar first. An unindexed document
// yields an empty result, not an error.
func (ix *VectorIndex) Query(documentID string, queryVector []float32, limit int) []Entry {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	ix.mu.RLock()
	results := make([]Entry, 0)
	for _, entry := range ix.entries {
		if entry.DocumentID != documentID {
			continue
		}
		entry.Similarity = CosineSimilarity(queryVector, entry.Vector)
		results = append(results, entry)
	}
	ix.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity == results[j].Similarity {
			return results[i].SequenceIndex < results[j].SequenceIndex
		}
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// DeleteDocument removes the document registration and all of its entries,
// returning the number of entries removed. Unknown ids remove nothing and
// return 0.
func (ix *VectorIndex) DeleteDocument(documentID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed := 0
	for id, entry := range ix.entries {
		if entry.DocumentID == documentID {
			delete(ix.entries, id)
			removed++
		}
	}
	delete(ix.docs, documentID)
	return removed
}

func (ix *VectorIndex) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{TotalChunks: len(ix.entries), Documents: len(ix.docs)}
}

// CosineSimilarity measures directional closeness of two vectors. A zero-norm
// vector compares as 0 against anything; mismatched lengths also compare as 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
