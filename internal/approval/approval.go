// Package approval implements the human-in-the-loop gate that turns a
// NEED_APPROVAL decision into a terminal one, plus an automatic
// variant for non-interactive execution. Both share one interface
// rather than the reference implementation's inheritance hierarchy.
package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

// Result is the terminal outcome of an approval request.
type Result string

const (
	Approved Result = "APPROVED"
	Denied   Result = "DENIED"
	Edited   Result = "EDITED"
	Skipped  Result = "SKIPPED"
	TimedOut Result = "TIMEOUT"
)

// Request describes a command awaiting a human decision.
type Request struct {
	ID             string
	Command        string
	RiskLevel      classifier.RiskLevel
	Reasons        []string
	ContextSummary string
	Timeout        time.Duration
}

// NewRequest builds a Request with a fresh ID and the default 30s
// timeout when none is supplied.
func NewRequest(command string, level classifier.RiskLevel, reasons []string, contextSummary string, timeout time.Duration) Request {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Request{
		ID:             uuid.NewString(),
		Command:        command,
		RiskLevel:      level,
		Reasons:        reasons,
		ContextSummary: contextSummary,
		Timeout:        timeout,
	}
}

// Response is the outcome of resolving a Request.
type Response struct {
	Result     Result
	Command    string // possibly edited; equals the request's command otherwise
	ApproverID string
	Timestamp  time.Time
	Reason     string
}

// Flow is the shared contract for interactive and automatic approvers.
type Flow interface {
	RequestApproval(req Request) Response
}
