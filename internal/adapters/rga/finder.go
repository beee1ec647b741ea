package rga

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"pdflens/internal/application"
	"pdflens/internal/ports"
)

// Finder implements ports.CandidateFinder using ripgrep-all
type Finder struct {
	bin   string
	regex bool
}

// Ensure Finder implements CandidateFinder
var _ ports.CandidateFinder = (*Finder)(nil)

// Option configures the Finder
type Option func(*Finder)

// WithRegex passes the term to rga as a regular expression
func WithRegex(regex bool) Option {
	return func(f *Finder) {
		f.regex = regex
	}
}

// WithBinary overrides the rga executable
func WithBinary(bin string) Option {
	return func(f *Finder) {
		f.bin = bin
	}
}

// NewFinder creates a new rga finder
func NewFinder(opts ...Option) *Finder {
	f := &Finder{bin: "rga"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Available reports whether the rga binary is on PATH
func (f *Finder) Available() bool {
	_, err := exec.LookPath(f.bin)
	return err == nil
}

// FindCandidates lists PDFs under root whose text contains the term
func (f *Finder) FindCandidates(ctx context.Context, term, root string) ([]string, error) {
	if !f.Available() {
		return nil, fmt.Errorf("%w: %s not found", application.ErrNoBackend, f.bin)
	}

	cmd := exec.CommandContext(ctx, f.bin, Args(term, root, f.regex)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// rga exits 1 when nothing matched
			if exitErr.ExitCode() == 1 {
				return nil, nil
			}
			return nil, fmt.Errorf("rga error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("rga error: %w", err)
	}

	return ParseOutput(string(output), root)
}

// Args builds the rga command line. The search is case-insensitive like the in-process matcher.
func Args(term, root string, regex bool) []string {
	args := []string{"--files-with-matches", "--ignore-case", "--glob", "*.pdf"}
	if !regex {
		args = append(args, "--fixed-strings")
	}
	return append(args, "--", term, root)
}

// ParseOutput turns rga's one-path-per-line output into sorted absolute paths
func ParseOutput(output, root string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(root, line)
		}
		abs, err := filepath.Abs(line)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		paths = append(paths, abs)
	}
	sort.Strings(paths)
	return paths, nil
}
