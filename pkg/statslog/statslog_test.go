package statslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog_AppendAndFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refresh.log")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	l.Append("level=%d block=%d layer=%d copies=%d", 0, 2, 3, 1)
	l.Append("level=%d sweep_ticks=%d", 1, 42)

	if got := l.Lines(); got != 2 {
		t.Fatalf("Lines() = %d, want 2", got)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "ftlsim refresh-statistics log") {
		t.Errorf("missing run header: %q", text)
	}
	if !strings.Contains(text, "level=0 block=2 layer=3 copies=1") {
		t.Errorf("missing first line: %q", text)
	}
	if !strings.Contains(text, "level=1 sweep_ticks=42") {
		t.Errorf("missing second line: %q", text)
	}
}

func TestLog_TruncatesOnReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refresh.log")

	l1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l1.Append("stale entry from a previous run")
	if err := l1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "stale entry") {
		t.Errorf("expected re-Open to truncate the file, found stale content: %q", data)
	}
}
