package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DocumentExtractor defines the interface for extracting text from various document types.
type DocumentExtractor interface {
	// ExtractText takes the raw file bytes and content type, and returns a channel
	// of extracted text fragments. The `contentType` hint helps the extractor
	// choose the right parsing strategy.
	ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error)
}
