package colors

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_DisabledIsIdentity(t *testing.T) {
	c := New(false)
	for _, code := range []string{"10", "20", "30", "40", "50", "60", "99"} {
		if got := c.Level(code)("INFO "); got != "INFO " {
			t.Fatalf("Level(%s) = %q, want identity", code, got)
		}
	}
	if got := c.Message("hello\tworld"); got != "hello\tworld" {
		t.Fatalf("Message = %q, want identity", got)
	}
	if got := c.Default("USERLVL"); got != "USERLVL" {
		t.Fatalf("Default = %q, want identity", got)
	}
}

func TestNew_EnabledWrapsInANSI(t *testing.T) {
	c := New(true)
	got := c.Level("30")("INFO ")
	if !strings.HasPrefix(got, "\x1b[") {
		t.Fatalf("Level(30) = %q, want ANSI prefix", got)
	}
	if !strings.Contains(got, "32") {
		t.Fatalf("Level(30) = %q, want green (32)", got)
	}
	if !strings.Contains(got, "INFO ") {
		t.Fatalf("Level(30) = %q, want padded label kept", got)
	}
	if red := c.Level("50")("ERROR"); !strings.Contains(red, "31") {
		t.Fatalf("Level(50) = %q, want red (31)", red)
	}
	if msg := c.Message("foo"); !strings.Contains(msg, "36") || !strings.Contains(msg, "foo") {
		t.Fatalf("Message = %q, want cyan foo", msg)
	}
}

func TestNew_EnabledUnknownLevelUsesDefault(t *testing.T) {
	c := New(true)
	if got, want := c.Level("35")("USERLVL"), c.Default("USERLVL"); got != want {
		t.Fatalf("Level(35) = %q, want Default %q", got, want)
	}
}

func TestStyled_KeepsLinesAndTabs(t *testing.T) {
	c := New(true)
	got := c.Message("a\tb\n\nlonger line")
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Message produced %d lines, want 3: %q", len(lines), got)
	}
	if lines[1] != "" {
		t.Fatalf("empty line styled: %q", lines[1])
	}
	if !strings.Contains(lines[0], "a\tb") {
		t.Fatalf("tab converted: %q", lines[0])
	}
	if strings.Contains(lines[0], "a\tb   ") {
		t.Fatalf("short line padded: %q", lines[0])
	}
}

func TestDetect_NonTerminalWriter(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	if Detect(&bytes.Buffer{}) {
		t.Fatalf("Detect(buffer) = true, want false")
	}
}

func TestDetect_ForcedByEnvironment(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !Detect(&bytes.Buffer{}) {
		t.Fatalf("Detect with CLICOLOR_FORCE = false, want true")
	}
}
