package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	env := map[string]string{"HOME": "/home/u"}

	cfg, err := Load(LoadInput{Env: env})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		CacheDir:    "/home/u/.cache/pdflens",
		DPI:         110,
		Display:     "auto",
		Fingerprint: "stat",
		Snap:        "none",
		Concurrency: 4,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	xdg := t.TempDir()
	path := filepath.Join(xdg, "pdflens", ConfigFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	jsonc := `{
		// renders are crisp enough at 150
		"dpi": 150,
		"snap": "match",
		"display": "chafa",
		"concurrency": 2, // trailing commas are fine
	}`
	if err := os.WriteFile(path, []byte(jsonc), 0644); err != nil {
		t.Fatal(err)
	}

	env := map[string]string{
		"HOME":                "/home/u",
		"XDG_CONFIG_HOME":     xdg,
		"XDG_CACHE_HOME":      "/var/cache",
		"PDFLENS_DISPLAY":     "wezterm",
		"PDFLENS_CONCURRENCY": "8",
	}

	cfg, err := Load(LoadInput{Env: env, Overrides: Config{Concurrency: 1, CacheDir: "~/c"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		CacheDir:    "/home/u/c", // flag
		DPI:         150,         // file
		Display:     "wezterm",   // env over file
		Fingerprint: "stat",      // default
		Snap:        "match",     // file
		Concurrency: 1,           // flag over env over file
		Source:      path,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"dpi": `), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input LoadInput
		want  error
	}{
		{
			name:  "explicit file missing",
			input: LoadInput{ConfigPath: filepath.Join(dir, "nope.json"), Env: map[string]string{"HOME": dir}},
			want:  ErrConfigRead,
		},
		{
			name:  "malformed file",
			input: LoadInput{ConfigPath: bad, Env: map[string]string{"HOME": dir}},
			want:  ErrConfigInvalid,
		},
		{
			name:  "bad env number",
			input: LoadInput{Env: map[string]string{"HOME": dir, "PDFLENS_DPI": "high"}},
			want:  ErrConfigInvalid,
		},
		{
			name:  "unknown snap",
			input: LoadInput{Env: map[string]string{"HOME": dir}, Overrides: Config{Snap: "nearest"}},
			want:  ErrConfigInvalid,
		},
		{
			name:  "negative dpi",
			input: LoadInput{Env: map[string]string{"HOME": dir}, Overrides: Config{DPI: -5}},
			want:  ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	env := map[string]string{"XDG_CONFIG_HOME": t.TempDir(), "HOME": "/home/u", "PDFLENS_DEBUG": "true"}

	cfg, err := Load(LoadInput{Env: env})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "" || !cfg.Debug {
		t.Errorf("got Source=%q Debug=%v, want no source and debug on", cfg.Source, cfg.Debug)
	}
}

func TestDefault_CacheDir(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want string
	}{
		{env: map[string]string{"XDG_CACHE_HOME": "/x"}, want: "/x/pdflens"},
		{env: map[string]string{"HOME": "/h"}, want: "/h/.cache/pdflens"},
	}
	for _, tt := range tests {
		if got := Default(tt.env).CacheDir; got != tt.want {
			t.Errorf("CacheDir = %q, want %q", got, tt.want)
		}
	}
}
