package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func TestPlainModeHasNoANSI(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRenderer(out, &bytes.Buffer{}, ModePlain)

	r.Println(r.Styles().Success.Render("created"))
	r.Printf("%s\n", r.Styles().Error.Render("failed"))

	if ansiPattern.MatchString(out.String()) {
		t.Errorf("plain mode output contains ANSI escapes: %q", out.String())
	}
	if !strings.Contains(out.String(), "created") {
		t.Errorf("styled text should pass through unstyled, got %q", out.String())
	}
}

func TestAutoModeOnBufferIsPlain(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRenderer(out, &bytes.Buffer{}, ModeAuto)

	r.Println(r.Styles().Title.Render("Provisioning"))

	if ansiPattern.MatchString(out.String()) {
		t.Errorf("a non-TTY writer must get plain output, got %q", out.String())
	}
}

func TestErrorfWritesToStderr(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	r := NewRenderer(out, errOut, ModePlain)

	r.Errorf("boom: %d\n", 7)

	if out.Len() != 0 {
		t.Errorf("stdout should be untouched, got %q", out.String())
	}
	if errOut.String() != "boom: 7\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}
