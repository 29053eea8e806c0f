package ingestion_engine

import (
	"bytes"
	"context"
	"log"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"

	"github.com/spediak/spediak-backend/internal/core"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText uses docconv to extract text from the given bytes based on content type.
// It writes the extracted text as line fragments to the output channel.
func (e *DocconvExtractor) ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error) {
	out := make(chan string, 32)

	reader := bytes.NewReader(r)

	g.Go(func() error {
		defer close(out)

		res, err := docconv.Convert(reader, contentType, e.useReadability)
		if err != nil {
			log.Printf("docconv: extraction failed for content type %q: %v", contentType, err)
			return err
		}

		text := res.Body
		if text == "" {
			log.Printf("docconv: extracted empty text for content type %q", contentType)
			return nil
		}

		lines := strings.Split(text, "\n")
		for _, line := range lines {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out, nil
}
