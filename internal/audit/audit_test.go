package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

func TestMemorySinkCollectsRecords(t *testing.T) {
	s := NewMemorySink()
	if err := s.Write(NewRecord("u1", "ls", classifier.SAFE, "ALLOW", "")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(s.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(s.Records))
	}
	if s.Records[0].ID == "" {
		t.Errorf("expected a generated ID")
	}
}

func TestFileSinkAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	if err := sink.Write(NewRecord("u1", "rm -rf /", classifier.CRITICAL, "BLOCKED", "Blocked by risk classifier")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Write(NewRecord("u2", "ls", classifier.SAFE, "ALLOW", "")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	data := string(raw)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], `"risk_level":"CRITICAL"`) {
		t.Errorf("expected risk_level rendered by name, got %q", lines[0])
	}
}
