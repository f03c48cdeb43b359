package domain

import (
	"context"
	"time"
)

// FileType identifies the source format a document was extracted from.
type FileType string

const (
	FileTypeTXT  FileType = "txt"
	FileTypeMD   FileType = "md"
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeHTML FileType = "html"
)

// Document represents a single file loaded into the system.
type Document struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    FileType  `json:"type"`
	Text    string    `json:"text"`
	Size    int64     `json:"size"`
	AddedAt time.Time `json:"added_at"`
}

// Chunk is an overlapping passage of a document used for retrieval.
// Start and End form a half-open character span into the document text.
// EmbeddedBy identifies the embedding backend that produced Embedding.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Embedding  []float64 `json:"embedding,omitempty"`
	EmbeddedBy string    `json:"embedded_by,omitempty"`
}

// Embedded reports whether the chunk already carries a vector.
func (c Chunk) Embedded() bool { return len(c.Embedding) > 0 }

// ScoredChunk represents a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Citation points at a character span of a document.
type Citation struct {
	DocumentID string `json:"document_id"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// AnswerSentence is one sentence of a grounded answer.
type AnswerSentence struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// Answer is the result of asking a question over a set of documents.
type Answer struct {
	Question  string           `json:"question"`
	Sentences []AnswerSentence `json:"sentences"`
}

// Section is a titled clause of a document.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ChangeType classifies a diff unit.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeDelete ChangeType = "delete"
	ChangeModify ChangeType = "modify"
)

// DiffUnit describes how one clause changed between two document versions.
type DiffUnit struct {
	Clause   string     `json:"clause"`
	Location string     `json:"location"`
	Before   string     `json:"before"`
	After    string     `json:"after"`
	Type     ChangeType `json:"type"`
	Risk     string     `json:"risk,omitempty"`
}

// Segmenter splits text into trimmed, non-empty sentences in document order.
type Segmenter interface {
	Name() string
	Split(text string) []string
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) []Chunk
}

// Extractor turns a file on disk into a document with plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}

// Store persists documents and chunks keyed by id.
type Store interface {
	PutDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	PutChunks(ctx context.Context, chunks []Chunk) error
	ListChunks(ctx context.Context) ([]Chunk, error)
	ChunksByDocuments(ctx context.Context, documentIDs []string) ([]Chunk, error)
	Clear(ctx context.Context) error
	Close() error
}
