// Package filesystem provides a document source backed by a local
// directory of text and markdown files.
//
// Documents are enumerated with glob patterns, segmented into pages on
// form-feed separators, and chunked with a fixed-size sliding window.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultPatterns are the include patterns used when none are configured.
var DefaultPatterns = []string{"**/*.txt", "**/*.md"}

// Section headings recognised at the start of a chunk.
var sectionHeadings = []string{
	"Class A", "Class B", "Class C", "Class D",
	"Class E", "Class F", "Class G", "Class H",
	"General Issues",
	"Introduction",
	"Interpretation",
	"Conditions",
	"Development is not permitted",
}

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads documents from a directory tree.
type Source struct {
	root      string
	patterns  []string
	chunkSize int
	overlap   int
}

// Option configures the filesystem source.
type Option func(*Source)

// WithPatterns sets the include glob patterns.
func WithPatterns(patterns []string) Option {
	return func(s *Source) {
		if len(patterns) > 0 {
			s.patterns = patterns
		}
	}
}

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Source) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Source) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a filesystem source rooted at dir.
func New(dir string, opts ...Option) *Source {
	s := &Source{
		root:      dir,
		patterns:  DefaultPatterns,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// List implements driven.DocumentSource.
func (s *Source) List(ctx context.Context) ([]domain.SourceRef, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("source directory %s: %w", s.root, domain.ErrSourceUnavailable)
	}

	fsys := os.DirFS(s.root)
	seen := make(map[string]struct{})

	for _, pattern := range s.patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := fs.Stat(fsys, m)
			if err != nil || info.IsDir() {
				continue
			}
			seen[m] = struct{}{}
		}
	}

	refs := make([]domain.SourceRef, 0, len(seen))
	for m := range seen {
		refs = append(refs, domain.SourceRef{
			ID:   m,
			Path: filepath.Join(s.root, filepath.FromSlash(m)),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	logger.Debug("Found %d source documents in %s", len(refs), s.root)
	return refs, nil
}

// Open implements driven.DocumentSource.
func (s *Source) Open(ctx context.Context, ref domain.SourceRef) (io.ReadCloser, error) {
	f, err := os.Open(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref.ID, err)
	}
	return f, nil
}

// Extract implements driven.DocumentSource.
func (s *Source) Extract(ctx context.Context, ref domain.SourceRef) (*domain.Extraction, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.ID, err)
	}

	pages := splitPages(string(data))
	var entries []domain.IndexEntry

	for pageNo, page := range pages {
		for _, text := range s.chunkText(page) {
			entry := domain.IndexEntry{
				ID:     uuid.New().String(),
				Text:   text,
				Source: ref.ID,
				Page:   pageNo + 1,
			}
			if section := detectSection(text); section != "" {
				entry.Section = section
			}
			entries = append(entries, entry)
		}
	}

	logger.Debug("Extracted %s: %d pages, %d entries", ref.ID, len(pages), len(entries))
	return &domain.Extraction{
		Pages:   len(pages),
		Entries: entries,
	}, nil
}

// splitPages segments content on form feeds and drops blank pages.
func splitPages(content string) []string {
	var pages []string
	for _, page := range strings.Split(content, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// chunkText splits text into fixed-size chunks with overlap.
// Offsets are in runes so multi-byte characters are never split.
func (s *Source) chunkText(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	total := len(runes)

	var chunks []string
	start := 0
	for start < total {
		end := start + s.chunkSize
		if end > total {
			end = total
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		start += s.chunkSize - s.overlap
	}

	return chunks
}

// detectSection returns the section heading the chunk opens with,
// or "" when it opens with none.
func detectSection(text string) string {
	lead := strings.ToLower(strings.TrimLeft(text, " \t\n\r#*"))
	for _, heading := range sectionHeadings {
		lowered := strings.ToLower(heading)
		if !strings.HasPrefix(lead, lowered) {
			continue
		}
		// "Class A" must not match "Class AB".
		rest := lead[len(lowered):]
		if rest != "" {
			if r := []rune(rest)[0]; unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		return heading
	}
	return ""
}
