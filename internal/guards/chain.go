// Package guards contains the deterministic classifiers that run
// before any retrieval or generation cost is incurred. Each guard is a
// pure function of (question, session objects): no I/O, no external
// calls. Guards run in a fixed order and the first to fire wins.
package guards

import (
	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// Guard is one deterministic classifier. Evaluate returns nil to
// abstain or a GuardResult to short-circuit the pipeline.
type Guard interface {
	// Name identifies the guard in logs.
	Name() string

	// Evaluate inspects the question and session objects.
	Evaluate(question string, objects []domain.DrawingObject) *domain.GuardResult
}

// Chain runs guards in fixed order; the first to fire wins and the
// rest are skipped.
type Chain struct {
	guards []Guard
}

// NewChain creates a chain with the given guard order.
func NewChain(guards ...Guard) *Chain {
	return &Chain{guards: guards}
}

// DefaultChain returns the production guard order: small talk, then
// geometry, then the needs-input follow-up.
func DefaultChain() *Chain {
	return NewChain(SmallTalk{}, Geometry{}, NeedsInput{})
}

// Evaluate returns the first non-nil guard result, or nil when every
// guard abstains and the request proceeds to routing.
func (c *Chain) Evaluate(question string, objects []domain.DrawingObject) *domain.GuardResult {
	for _, g := range c.guards {
		if res := g.Evaluate(question, objects); res != nil {
			return res
		}
	}
	return nil
}
