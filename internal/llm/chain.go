package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/trip-guide/internal/types"
)

// Result is the outcome of a chain generation: the guide text plus the
// name of the provider that produced it. The provider identity is recorded
// for observability only; callers must not branch on it.
type Result struct {
	Text     *types.GuideText
	Provider string
}

// Chain tries an ordered list of generators until one succeeds. Each
// attempt runs under its own timeout. Construct chains so the last link is
// the template generator; Generate then never fails, it only degrades.
type Chain struct {
	generators []Generator
	timeout    time.Duration
}

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 45 * time.Second

// NewChain creates a fallback chain over the given generators, tried in
// order. A zero timeout uses DefaultAttemptTimeout.
func NewChain(timeout time.Duration, generators ...Generator) *Chain {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	return &Chain{generators: generators, timeout: timeout}
}

// Generate walks the chain. It returns an error only if every generator
// fails, which a chain terminated by TemplateGenerator makes impossible.
func (c *Chain) Generate(ctx context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*Result, error) {
	if len(c.generators) == 0 {
		return nil, fmt.Errorf("no generators configured")
	}

	var lastErr error
	for _, gen := range c.generators {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := gen.Generate(attemptCtx, facts, prefs)
		cancel()

		if err == nil && text != nil {
			return &Result{Text: text, Provider: gen.Name()}, nil
		}
		lastErr = err
		log.Printf("[llm] provider %s failed, trying next: %v", gen.Name(), err)

		// A canceled parent context means the run is being torn down;
		// trying further providers would just burn their timeouts.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("all generators failed: %w", lastErr)
}
