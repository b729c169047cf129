package extract

import (
	"path/filepath"
	"regexp"

	"datefixer/internal/dating"
)

var screenshotPattern = regexp.MustCompile(`(?i)^screenshot[-_\s]`)

// Screenshot strips a "Screenshot" prefix (any case, followed by a
// separator) and resolves the remainder through its chain. Both the date and
// the confidence come from whatever the remainder resolves to.
type Screenshot struct {
	chain *Chain
}

// NewScreenshot returns the screenshot extractor. It is bound to a chain by
// NewChain; an unbound extractor never matches.
func NewScreenshot() *Screenshot { return &Screenshot{} }

func (s *Screenshot) bind(c *Chain) { s.chain = c }

// Name implements Extractor.
func (*Screenshot) Name() string { return "screenshot" }

// Match implements Extractor.
func (s *Screenshot) Match(path, name string) (dating.Guess, bool) {
	return s.matchAt(path, name, 0)
}

func (s *Screenshot) matchAt(path, name string, depth int) (dating.Guess, bool) {
	if s.chain == nil || depth >= maxRecursionDepth {
		return dating.Guess{}, false
	}
	loc := screenshotPattern.FindStringIndex(name)
	if loc == nil {
		return dating.Guess{}, false
	}
	rest := name[loc[1]:]
	// The remainder must be strictly shorter so recursion terminates.
	if rest == "" || len(rest) >= len(name) {
		return dating.Guess{}, false
	}
	restPath := filepath.Join(filepath.Dir(path), rest)
	res, ok := s.chain.resolve(restPath, rest, dating.MaxTime, depth+1)
	if !ok {
		return dating.Guess{}, false
	}
	return res.Guess, true
}
