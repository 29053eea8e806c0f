package ingestion_engine

import (
	"github.com/spediak/spediak-backend/internal/core"
)

// IngestConfig tunes the streaming pipeline.
//
// TargetTokens:   approximate tokens per chunk (e.g., 500).
// OverlapTokens:  token overlap between consecutive chunks for context bleed (e.g., 50).
// BatchSize:      how many chunks to embed/write in one batch (e.g., 32).
// EmbedDim:       expected embedding vector length; must match the pgvector
//                 column or every insert fails. Zero disables the check.
type IngestConfig struct {
	TargetTokens  int
	OverlapTokens int
	BatchSize     int
	EmbedDim      int
}

// chunk is the internal representation passed through the pipeline.
//
// Pos:      stable, zero-based position of the chunk inside the document.
// Text:     chunk content (built from one or more fragments).
// TokenCnt: approximate token count (used for batching and overlap math).
type chunk struct {
	Pos      int
	Text     string
	TokenCnt int
}

// KnowledgeIngestor orchestrates the background knowledge-base pipeline:
//
// db:        persistence for knowledge documents and chunks.
// obj:       object storage for the raw files.
// embedder:  embedding provider.
// extractor: text extraction from the raw file bytes.
// jobs:      in-memory queue of document IDs to process.
type KnowledgeIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor core.DocumentExtractor
	cfg       *IngestConfig
	jobs      chan string
}

// SopExtractor runs the asynchronous text-extraction step for uploaded SOP
// documents, moving extraction_status pending -> processing -> completed|failed.
type SopExtractor struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	jobs      chan string
}

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}
