package mupdf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArgs(t *testing.T) {
	got := Args("/d/a.pdf", 7, 110, "/tmp/out.png")
	want := []string{"draw", "-q", "-r", "110", "-F", "png", "-o", "/tmp/out.png", "/d/a.pdf", "7"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}
