// Package audit provides the append-only record of every terminal
// security decision. A record is written exactly once per decision and
// is never mutated afterward.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

// Record is an immutable audit log entry.
type Record struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Actor     string               `json:"actor"`
	Command   string               `json:"command"`
	RiskLevel classifier.RiskLevel `json:"-"`
	Outcome   string               `json:"outcome"`
	Reason    string               `json:"reason"`
}

// MarshalJSON renders RiskLevel by name, matching the external
// JSON-lines schema (risk_level as a string, not an ordinal).
func (r Record) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID        string    `json:"id"`
		Timestamp time.Time `json:"timestamp"`
		Actor     string    `json:"actor"`
		Command   string    `json:"command"`
		RiskLevel string    `json:"risk_level"`
		Outcome   string    `json:"outcome"`
		Reason    string    `json:"reason"`
	}
	return json.Marshal(alias{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Actor:     r.Actor,
		Command:   r.Command,
		RiskLevel: r.RiskLevel.String(),
		Outcome:   r.Outcome,
		Reason:    r.Reason,
	})
}

// NewRecord stamps a Record with a fresh ID and the current time.
func NewRecord(actor, command string, level classifier.RiskLevel, outcome, reason string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Actor:     actor,
		Command:   command,
		RiskLevel: level,
		Outcome:   outcome,
		Reason:    reason,
	}
}

// Sink persists Records. Write must fail closed: an error means the
// caller should treat the decision as BLOCKED rather than proceed with
// an unaudited action.
type Sink interface {
	Write(r Record) error
}

// FileSink appends JSON-lines records to an append-only file handle.
type FileSink struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewFileSink opens path for appending, creating it if necessary.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}
	return &FileSink{w: f, c: f}, nil
}

// Write appends one JSON-encoded record followed by a newline.
func (s *FileSink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *FileSink) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

// MemorySink collects records in memory, for tests.
type MemorySink struct {
	mu      sync.Mutex
	Records []Record
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write appends r to Records.
func (s *MemorySink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, r)
	return nil
}
