package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLevelsAndStdoutEcho(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonntp.log")
	l, err := New(path, LevelInfo, true)
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	l.stdout = &stdout

	l.Debug("hidden %d", 1)
	l.Info("posted %s", "<a@b>")
	l.Warn("slow provider")
	l.Write([]byte("GET /api/journal | 200\n"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	file := string(data)
	if strings.Contains(file, "hidden") {
		t.Error("debug line written below the configured level")
	}
	for _, want := range []string{"[INFO] posted <a@b>", "[WARN] slow provider", "[INFO] GET /api/journal | 200"} {
		if !strings.Contains(file, want) {
			t.Errorf("log file missing %q:\n%s", want, file)
		}
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q", want)
		}
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing %s", "happens")
	if n, err := l.Write([]byte("x")); n != 1 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
}
