// Package terminal turns page images into escape sequences or cell art
// by shelling out to an image viewer that writes to stdout.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"pdflens/internal/application"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// Display backend names accepted by NewDisplay
const (
	Auto    = "auto"
	WezTerm = "wezterm"
	Chafa   = "chafa"
)

// Backend is one external image viewer
type Backend struct {
	Name string
	Bin  string
	Args func(file string, width, height int) []string
}

// WezTermBackend renders with wezterm's imgcat (iTerm2 image protocol)
var WezTermBackend = Backend{
	Name: WezTerm,
	Bin:  "wezterm",
	Args: func(file string, width, height int) []string {
		return []string{"imgcat", "--width", strconv.Itoa(width), "--height", strconv.Itoa(height), file}
	},
}

// ChafaBackend renders with chafa, which falls back to character art
var ChafaBackend = Backend{
	Name: Chafa,
	Bin:  "chafa",
	Args: func(file string, width, height int) []string {
		return []string{"--size", fmt.Sprintf("%dx%d", width, height), file}
	},
}

// Display implements ports.ImageDisplay over an ordered list of backends
type Display struct {
	backends []Backend
	forced   bool
	log      *slog.Logger
}

// Ensure Display implements ImageDisplay
var _ ports.ImageDisplay = (*Display)(nil)

// NewDisplay selects backends by name. "auto" (or "") tries wezterm then chafa;
// a specific name uses only that backend.
func NewDisplay(name string) (*Display, error) {
	d := &Display{log: logging.For(logging.CompRender)}

	switch strings.ToLower(name) {
	case "", Auto:
		d.backends = []Backend{WezTermBackend, ChafaBackend}
	case WezTerm:
		d.backends, d.forced = []Backend{WezTermBackend}, true
	case Chafa:
		d.backends, d.forced = []Backend{ChafaBackend}, true
	default:
		return nil, fmt.Errorf("unknown display %q", name)
	}
	return d, nil
}

// NewDisplayWith builds a display from explicit backends
func NewDisplayWith(backends ...Backend) *Display {
	return &Display{backends: backends, log: logging.For(logging.CompRender)}
}

// Name returns the first backend that is installed, or "none"
func (d *Display) Name() string {
	for _, b := range d.backends {
		if available(b) {
			return b.Name
		}
	}
	return "none"
}

// Render writes the image to a temporary file and converts it with the first
// backend that succeeds
func (d *Display) Render(ctx context.Context, img domain.PageImage, width, height int) (string, error) {
	if width < 1 || height < 1 {
		return "", &application.ValidationError{Field: "size", Message: "preview area is too small"}
	}

	f, err := os.CreateTemp("", "pdflens-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	var lastErr error
	for _, b := range d.backends {
		if !available(b) {
			continue
		}
		out, err := run(ctx, b, f.Name(), width, height)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		d.log.Debug("display backend failed", "backend", b.Name, "error", err)
		lastErr = err
		if d.forced {
			break
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: install wezterm or chafa", application.ErrNoBackend)
}

func available(b Backend) bool {
	_, err := exec.LookPath(b.Bin)
	return err == nil
}

func run(ctx context.Context, b Backend, file string, width, height int) (string, error) {
	cmd := exec.CommandContext(ctx, b.Bin, b.Args(file, width, height)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			if msg == "" {
				msg = exitErr.Error()
			}
			return "", fmt.Errorf("%s error: %s", b.Name, msg)
		}
		return "", fmt.Errorf("%s error: %w", b.Name, err)
	}
	return string(output), nil
}
