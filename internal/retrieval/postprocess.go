// Package retrieval postprocesses scored excerpts returned by the
// external index before they reach the generative step.
package retrieval

import (
	"sort"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// DefaultPerPageCap is how many chunks one (source, page) pair may
// contribute. It bounds how much of the final answer a single page can
// dominate while still allowing more than one relevant passage per
// page to survive.
const DefaultPerPageCap = 2

// Option configures postprocessing.
type Option func(*settings)

type settings struct {
	maxDistance *float64
	perPageCap  int
}

// WithMaxDistance drops every chunk whose distance exceeds d. Chunks
// with an unknown distance always fail a finite threshold.
func WithMaxDistance(d float64) Option {
	return func(s *settings) {
		s.maxDistance = &d
	}
}

// WithPerPageCap overrides the per-(source, page) cap.
func WithPerPageCap(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.perPageCap = n
		}
	}
}

type sourcePage struct {
	source string
	page   string
	hasPg  bool
}

func keyOf(c domain.Chunk) sourcePage {
	k := sourcePage{source: c.Source}
	if k.source == "" {
		k.source = "unknown"
	}
	if c.Page != nil {
		k.page = *c.Page
		k.hasPg = true
	}
	return k
}

// Postprocess filters, deduplicates and ranks retrieved chunks:
// distance threshold first, then a per-(source, page) cap keeping the
// best chunks of each group, then a stable ascending sort by distance
// so ties keep their original order. Pure function of its input.
func Postprocess(chunks []domain.Chunk, opts ...Option) []domain.Chunk {
	s := settings{perPageCap: DefaultPerPageCap}
	for _, opt := range opts {
		opt(&s)
	}

	if len(chunks) == 0 {
		return []domain.Chunk{}
	}

	filtered := chunks
	if s.maxDistance != nil {
		filtered = make([]domain.Chunk, 0, len(chunks))
		for _, c := range chunks {
			if c.DistanceOrInf() <= *s.maxDistance {
				filtered = append(filtered, c)
			}
		}
	}

	// Rank within each (source, page) group; earlier input position
	// wins a distance tie.
	type ranked struct {
		pos  int
		dist float64
	}
	groups := make(map[sourcePage][]ranked)
	for i, c := range filtered {
		k := keyOf(c)
		groups[k] = append(groups[k], ranked{pos: i, dist: c.DistanceOrInf()})
	}

	keep := make(map[int]bool, len(filtered))
	for _, members := range groups {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].dist < members[j].dist
		})
		limit := s.perPageCap
		if limit > len(members) {
			limit = len(members)
		}
		for _, m := range members[:limit] {
			keep[m.pos] = true
		}
	}

	out := make([]domain.Chunk, 0, len(keep))
	for i, c := range filtered {
		if keep[i] {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceOrInf() < out[j].DistanceOrInf()
	})
	return out
}
