package observability

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pusher.log")
	closer := Setup(path)
	defer log.SetOutput(os.Stderr)

	log.Printf("hello %s", "file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file missing line: %q", data)
	}
}

func TestSetupStderrOnly(t *testing.T) {
	closer := Setup("")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}
