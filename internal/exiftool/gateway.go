package exiftool

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"datefixer/internal/dating"
	"datefixer/internal/services"
)

// dateFormat is the strftime form of dating.Layout that exiftool renders.
const dateFormat = "%Y-%m-%d %H:%M:%S"

// unwritable lists formats exiftool can write that have no DateTimeOriginal.
var unwritable = map[string]struct{}{"PDF": {}, "PSC": {}}

var resultLine = regexp.MustCompile(`(?m)^\s*(\d+)\s+image files?\s+(updated|unchanged)\b`)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithIgnoreMinorErrors passes -m so exiftool downgrades minor errors to
// warnings.
func WithIgnoreMinorErrors(enabled bool) GatewayOption {
	return func(g *Gateway) { g.ignoreMinor = enabled }
}

// Gateway exposes typed metadata operations over an Executor.
type Gateway struct {
	exec        Executor
	ignoreMinor bool

	extMu sync.Mutex
	exts  ExtensionSet
}

// NewGateway wraps exec.
func NewGateway(exec Executor, opts ...GatewayOption) *Gateway {
	g := &Gateway{exec: exec}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ReadDate returns the DateTimeOriginal of path. ok is false when the tag is
// absent.
func (g *Gateway) ReadDate(ctx context.Context, path string) (time.Time, bool, error) {
	args := []string{"-DateTimeOriginal", "-d", dateFormat, "-s3"}
	args = g.withMinor(args)
	args = append(args, path)

	out, err := g.exec.Execute(ctx, args...)
	if err != nil {
		return time.Time{}, false, err
	}
	if msg := toolError(out.Stderr); msg != "" {
		return time.Time{}, false, services.Wrap(services.ErrExternalTool, "exiftool", "read date", msg, nil)
	}
	value := firstLine(out.Stdout)
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dating.Layout, value, time.UTC)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrProtocol, "exiftool", "read date",
			fmt.Sprintf("unparsable value %q", value), err)
	}
	return t, true, nil
}

// WriteDate sets DateTimeOriginal of path to t, replacing the file in place.
func (g *Gateway) WriteDate(ctx context.Context, path string, t time.Time) error {
	args := []string{"-overwrite_original", "-DateTimeOriginal=" + t.Format(dating.Layout)}
	args = g.withMinor(args)
	args = append(args, path)
	return g.mutate(ctx, "write date", args)
}

// Repair strips all metadata and re-imports what exiftool can salvage, which
// fixes most files whose structure blocks a plain write.
func (g *Gateway) Repair(ctx context.Context, path string) error {
	args := []string{
		"-all=", "-tagsfromfile", "@", "-all:all", "-unsafe", "-icc_profile",
		"-overwrite_original", path,
	}
	return g.mutate(ctx, "repair", args)
}

// WritableExtensions lists the upper-cased extensions exiftool can write.
// The first successful answer is cached.
func (g *Gateway) WritableExtensions(ctx context.Context) (ExtensionSet, error) {
	g.extMu.Lock()
	defer g.extMu.Unlock()
	if g.exts != nil {
		return g.exts, nil
	}

	out, err := g.exec.Execute(ctx, "-listwf")
	if err != nil {
		return nil, err
	}
	set, err := parseExtensionList(out.Stdout)
	if err != nil {
		return nil, err
	}
	g.exts = set
	return set, nil
}

// Version returns exiftool's version string.
func (g *Gateway) Version(ctx context.Context) (string, error) {
	out, err := g.exec.Execute(ctx, "-ver")
	if err != nil {
		return "", err
	}
	v := firstLine(out.Stdout)
	if v == "" {
		return "", services.Wrap(services.ErrProtocol, "exiftool", "version", "empty response", nil)
	}
	return v, nil
}

func (g *Gateway) withMinor(args []string) []string {
	if g.ignoreMinor {
		return append(args, "-m")
	}
	return args
}

func (g *Gateway) mutate(ctx context.Context, operation string, args []string) error {
	out, err := g.exec.Execute(ctx, args...)
	if err != nil {
		return err
	}
	if msg := toolError(out.Stderr); msg != "" {
		return services.Wrap(services.ErrExternalTool, "exiftool", operation, msg, nil)
	}
	for _, m := range resultLine.FindAllStringSubmatch(out.Stdout, -1) {
		if n, _ := strconv.Atoi(m[1]); n > 0 {
			return nil
		}
	}
	detail := strings.TrimSpace(out.Stdout)
	if detail == "" {
		detail = "no result reported"
	}
	return services.Wrap(services.ErrExternalTool, "exiftool", operation, detail, nil)
}

// toolError returns exiftool's first "Error:" line, if any. Warnings are
// ignored.
func toolError(stderr string) string {
	sc := bufio.NewScanner(strings.NewReader(stderr))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "Error") {
			return line
		}
	}
	return ""
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func parseExtensionList(stdout string) (ExtensionSet, error) {
	header, body, found := strings.Cut(stdout, "\n")
	if !found || !strings.Contains(strings.ToLower(header), "writable") {
		return nil, services.Wrap(services.ErrProtocol, "exiftool", "list writable",
			fmt.Sprintf("unexpected header %q", strings.TrimSpace(header)), nil)
	}
	set := make(ExtensionSet)
	for _, tok := range strings.Fields(body) {
		ext := strings.ToUpper(tok)
		if _, skip := unwritable[ext]; skip {
			continue
		}
		set[ext] = struct{}{}
	}
	return set, nil
}

// ExtensionSet is a set of upper-cased file extensions without the dot.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from extensions in any case, with or without
// a leading dot.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if key := normalizeExt(ext); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Contains reports whether ext is in the set.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[normalizeExt(ext)]
	return ok
}

// Sorted returns the members in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalizeExt(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
