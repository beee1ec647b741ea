package application

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "query",
			value:     "theorem",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "query",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "query",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateSearchRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(file, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "directory", path: dir, wantErr: false},
		{name: "single pdf", path: file, wantErr: false},
		{name: "other file", path: notes, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "nope"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchRoot("searchRoot", tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSearchRoot() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageCount int
		wantErr   bool
	}{
		{name: "first page", page: 1, pageCount: 3},
		{name: "last page", page: 3, pageCount: 3},
		{name: "zero", page: 0, pageCount: 3, wantErr: true},
		{name: "past the end", page: 4, pageCount: 3, wantErr: true},
		{name: "unknown page count allows page 1", page: 1, pageCount: 0},
		{name: "unknown page count rejects page 2", page: 2, pageCount: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePage(tt.page, tt.pageCount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePage(%d, %d) error = %v, wantErr %v", tt.page, tt.pageCount, err, tt.wantErr)
			}
		})
	}
}

func TestRenderError_Is(t *testing.T) {
	cause := errors.New("pdftoppm exited 1")
	err := error(&RenderError{Path: "/a.pdf", Page: 2, Err: cause})

	if !errors.Is(err, ErrRenderFailed) {
		t.Error("RenderError should match ErrRenderFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("RenderError should unwrap to its cause")
	}
}
