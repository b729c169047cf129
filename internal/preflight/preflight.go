package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datefixer/internal/config"
	"datefixer/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Versioner reports the version of the running exiftool.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes the checks for a fix run over roots. v may be nil, in
// which case only the binary lookup is checked.
func RunAll(ctx context.Context, cfg *config.Config, roots []string, v Versioner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckExiftool(ctx, cfg.Exiftool.Binary, v)}
	for _, root := range roots {
		results = append(results, CheckRoot(root))
	}
	if cfg.Journal.Enabled && cfg.Paths.JournalPath != "" {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Paths.JournalPath)))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// CheckExiftool verifies the binary resolves and, when v is set, that it
// answers a version query.
func CheckExiftool(ctx context.Context, binary string, v Versioner) Result {
	const name = "ExifTool"

	status := deps.CheckBinaries([]deps.Requirement{deps.Exiftool(binary)})[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	if v == nil {
		return Result{Name: name, Passed: true, Detail: status.Path}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	version, err := v.Version(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", status.Path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version %s)", status.Path, strings.TrimSpace(version))}
}

// CheckRoot verifies a traversal root exists and can be listed or, for a
// single file, written.
func CheckRoot(path string) Result {
	name := "Root " + path
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: "does not exist"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("stat: %v", err)}
	}
	if info.IsDir() {
		if err := access(path, accessRead|accessExec); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("cannot list directory: %v", err)}
		}
		return Result{Name: name, Passed: true, Detail: "directory readable"}
	}
	if err := access(path, accessRead|accessWrite); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("file not writable: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: "file writable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
// A missing directory passes when its parent is writable, since it is
// created on demand.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkCreatable(name, path)
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := access(path, accessRead|accessWrite|accessExec); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func checkCreatable(name, path string) Result {
	parent := filepath.Dir(path)
	for parent != filepath.Dir(parent) {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		parent = filepath.Dir(parent)
	}
	if err := access(parent, accessWrite|accessExec); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}
