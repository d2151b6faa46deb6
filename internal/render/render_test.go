package render

import (
	"strings"
	"testing"
)

func TestMarkdown_Basic(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text.", DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown returned error: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("rendered output should contain the heading text, got %q", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("rendered output should contain the body text, got %q", out)
	}
}

func TestMarkdown_EmptyInput(t *testing.T) {
	if _, err := Markdown("", DefaultOptions()); err != nil {
		t.Fatalf("empty input should render, got %v", err)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	long := strings.Repeat("word ", 50)
	out, err := MarkdownWithWidth(long, 40)
	if err != nil {
		t.Fatalf("MarkdownWithWidth returned error: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		// Allow a little slack for ANSI escapes and margins.
		if len(stripANSI(line)) > 60 {
			t.Errorf("line exceeds wrap width: %q", line)
		}
	}
}

func TestOptions_Chaining(t *testing.T) {
	opts := DefaultOptions().WithWidth(120).WithStyle("light")
	if opts.Width != 120 || opts.Style != "light" {
		t.Errorf("options chaining broken: %+v", opts)
	}
	// Empty style keeps the current one.
	opts = opts.WithStyle("")
	if opts.Style != "light" {
		t.Errorf("empty style must be ignored, got %q", opts.Style)
	}
}

func TestPool_Reuse(t *testing.T) {
	opts := DefaultOptions()
	for i := 0; i < 3; i++ {
		if _, err := Markdown("hello", opts); err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
