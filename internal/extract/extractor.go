package extract

import (
	"path/filepath"
	"time"

	"datefixer/internal/dating"
)

// maxRecursionDepth bounds delegating extractors that re-resolve part of a
// name through the chain.
const maxRecursionDepth = 4

// Extractor recognizes one family of dated names. Match returns a guess only
// when name unambiguously belongs to the family. path is the full path of the
// file (or folder) and is used for stem/extension splitting.
type Extractor interface {
	Name() string
	Match(path, name string) (dating.Guess, bool)
}

// delegatingExtractor is implemented by extractors that recurse into the
// chain and therefore need the current recursion depth.
type delegatingExtractor interface {
	matchAt(path, name string, depth int) (dating.Guess, bool)
}

// Chain is an ordered list of extractors.
type Chain struct {
	extractors []Extractor
}

// Result records which extractor produced a guess.
type Result struct {
	Guess     dating.Guess
	Extractor string
}

// NewChain builds a chain that tries the extractors in the given order.
// Extractors that delegate back into a chain are bound to the new chain.
func NewChain(extractors ...Extractor) *Chain {
	c := &Chain{extractors: append([]Extractor(nil), extractors...)}
	for _, e := range c.extractors {
		if b, ok := e.(interface{ bind(*Chain) }); ok {
			b.bind(c)
		}
	}
	return c
}

// Default returns the production chain.
//
// Invariants: Screenshot strips a literal prefix before delegating, so it may
// sit anywhere; IdentifierEpoch must precede DatePrefix because short epoch
// prefixes also read as calendar digits.
func Default() *Chain {
	return NewChain(
		NewScreenshot(),
		NewIdentifierEpoch(),
		NewMillisEpoch(),
		NewCamera(),
		NewMessaging(),
		NewDatePrefix(),
	)
}

// Extractors returns a copy of the chain's ordered extractors.
func (c *Chain) Extractors() []Extractor {
	return append([]Extractor(nil), c.extractors...)
}

// Resolve returns the first guess whose time does not lie after reference.
// A guess in the future is skipped and the next extractor is tried.
func (c *Chain) Resolve(path, name string, reference time.Time) (dating.Guess, bool) {
	res, ok := c.resolve(path, name, reference, 0)
	return res.Guess, ok
}

// ResolveDetailed is Resolve but also reports the extractor that matched.
func (c *Chain) ResolveDetailed(path, name string, reference time.Time) (Result, bool) {
	return c.resolve(path, name, reference, 0)
}

func (c *Chain) resolve(path, name string, reference time.Time, depth int) (Result, bool) {
	if path == "" {
		path = name
	}
	for _, e := range c.extractors {
		var (
			g  dating.Guess
			ok bool
		)
		if d, isDelegating := e.(delegatingExtractor); isDelegating {
			g, ok = d.matchAt(path, name, depth)
		} else {
			g, ok = e.Match(path, name)
		}
		if !ok {
			continue
		}
		if g.After(reference) {
			continue
		}
		return Result{Guess: g, Extractor: e.Name()}, true
	}
	return Result{}, false
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
