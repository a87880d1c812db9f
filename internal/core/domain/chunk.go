package domain

import "math"

// SourceRef identifies one document offered by a document source.
type SourceRef struct {
	// ID is the stable identifier, e.g. the file name.
	ID string

	// Path is the provider-specific location used to read bytes.
	Path string
}

// IndexEntry is one chunk of extracted text ready for the external index.
type IndexEntry struct {
	// ID is the unique identifier under which the entry is indexed.
	ID string

	// Text is the chunk content.
	Text string

	// Source is the SourceID of the originating document.
	Source string

	// Page is the 1-based page the chunk was extracted from.
	Page int

	// Section is a detected section heading, empty when none.
	Section string
}

// Extraction is the result of extracting and chunking one document.
type Extraction struct {
	// Pages is the number of non-empty pages found.
	Pages int

	// Entries are the chunks in document order.
	Entries []IndexEntry
}

// Chunk is a retrieved excerpt scored by the external index.
// It is produced per query and never mutated.
type Chunk struct {
	// ID is the index entry identifier.
	ID string

	// Source is the originating document's SourceID.
	Source string

	// Page is the page number as reported by the index, nil when unknown.
	Page *string

	// Section is the detected section heading, nil when none.
	Section *string

	// Text is the excerpt content.
	Text string

	// Distance is the similarity distance (lower = more relevant),
	// nil when the index did not report one.
	Distance *float64
}

// DistanceOrInf returns the chunk distance, treating an unknown
// distance as maximally irrelevant.
func (c Chunk) DistanceOrInf() float64 {
	if c.Distance == nil {
		return math.Inf(1)
	}
	return *c.Distance
}
