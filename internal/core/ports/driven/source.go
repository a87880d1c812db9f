package driven

import (
	"context"
	"io"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// DocumentSource enumerates the current source documents and extracts
// page-segmented, chunked text from them. Extraction and chunking are
// external collaborators as far as the core is concerned: the
// reconciler only sees stable IDs, raw bytes and ready-made entries.
type DocumentSource interface {
	// List enumerates the current documents by stable identifier.
	List(ctx context.Context) ([]domain.SourceRef, error)

	// Open returns a reader over the document's raw bytes, used for
	// fingerprinting. The caller closes it.
	Open(ctx context.Context, ref domain.SourceRef) (io.ReadCloser, error)

	// Extract produces the page count and chunked index entries for
	// the document. Entry IDs are generated by the source.
	Extract(ctx context.Context, ref domain.SourceRef) (*domain.Extraction, error)
}
