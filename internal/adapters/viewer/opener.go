package viewer

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// EnvViewer names the viewer command, overriding detection
const EnvViewer = "PDFLENS_VIEWER"

// pageFlags maps known viewers to the argument that opens a given page
var pageFlags = map[string]func(page int) []string{
	"zathura": func(p int) []string { return []string{"--page=" + strconv.Itoa(p)} },
	"evince":  func(p int) []string { return []string{"--page-label=" + strconv.Itoa(p)} },
	"okular":  func(p int) []string { return []string{"--page", strconv.Itoa(p)} },
	"mupdf":   nil,
}

// Opener launches an external PDF viewer on a document page
type Opener struct {
	lookPath func(string) (string, error)
	getenv   func(string) string
	goos     string
}

// NewOpener creates a new viewer opener
func NewOpener() *Opener {
	return &Opener{
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
		goos:     runtime.GOOS,
	}
}

// Open starts the viewer without waiting for it to exit
func (o *Opener) Open(path string, page int) error {
	cmd, err := o.Command(path, page)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	return cmd.Process.Release()
}

// Command returns an exec.Cmd opening path at page in the preferred viewer
func (o *Opener) Command(path string, page int) (*exec.Cmd, error) {
	viewer := o.findViewer()
	if viewer == "" {
		return o.systemCommand(FileURI(path, page))
	}

	// the override may carry its own arguments
	fields := strings.Fields(viewer)
	args := fields[1:]
	if flags := pageFlags[filepath.Base(fields[0])]; flags != nil && page > 0 {
		args = append(args, flags(page)...)
	}
	args = append(args, path)

	return exec.Command(fields[0], args...), nil
}

func (o *Opener) findViewer() string {
	if v := strings.TrimSpace(o.getenv(EnvViewer)); v != "" {
		return v
	}

	candidates := []string{"zathura", "evince", "okular", "mupdf"}
	for _, name := range candidates {
		if path, err := o.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// FileURI builds a file:// URI with a #page=N fragment
func FileURI(path string, page int) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if page > 0 {
		u.Fragment = "page=" + strconv.Itoa(page)
	}
	return u.String()
}

// systemCommand hands the URI to the desktop's default handler
func (o *Opener) systemCommand(uri string) (*exec.Cmd, error) {
	switch o.goos {
	case "darwin":
		return exec.Command("open", uri), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", uri), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", uri), nil
	default:
		return nil, fmt.Errorf("no pdf viewer found: set $%s", EnvViewer)
	}
}
