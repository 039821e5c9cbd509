package utils

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reports", "nested", "profile.md")
	if err := SafeWriteFile(p, []byte("[DATASET SUMMARY]\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "[DATASET SUMMARY]\n" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 4})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if string(b) != "{\n  \"rows\": 4\n}" {
		t.Fatalf("got %q", b)
	}
	if _, err := PrettyJSON(math.NaN()); err == nil || !strings.Contains(err.Error(), "marshal json") {
		t.Fatalf("expected wrapped marshal error, got %v", err)
	}
}
