package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, ""},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q; want %q", tt.level, got, tt.want)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("manifest %s", "reset")
	if !strings.Contains(buf.String(), "manifest reset") {
		t.Errorf("output = %q; want it to contain %q", buf.String(), "manifest reset")
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.SetLevel(LevelDebug)
	if l.Level() != LevelDebug {
		t.Fatalf("Level() = %v; want %v", l.Level(), LevelDebug)
	}
	l.Debug("writing %s", "entry_test.rb")
	if !strings.Contains(buf.String(), "writing entry_test.rb") {
		t.Errorf("debug message missing from %q", buf.String())
	}

	buf.Reset()
	l.SetLevel(LevelNone)
	l.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output at LevelNone, got %q", buf.String())
	}
}

func TestLoggerSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := New(&first, LevelInfo)
	l.SetOutput(&second)
	l.Info("hello")

	if first.Len() != 0 {
		t.Errorf("old writer received output: %q", first.String())
	}
	if !strings.Contains(second.String(), "hello") {
		t.Errorf("new writer output = %q", second.String())
	}
}
