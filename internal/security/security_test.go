package security

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tafyai/agentsh-security-core/internal/approval"
	"github.com/tafyai/agentsh-security-core/internal/audit"
	"github.com/tafyai/agentsh-security-core/internal/classifier"
	"github.com/tafyai/agentsh-security-core/internal/policy"
	"github.com/tafyai/agentsh-security-core/internal/rbac"
)

// scriptedFlow returns its scripted Responses in order, one per
// RequestApproval call, and a denial once they run out.
type scriptedFlow struct {
	responses []approval.Response
	calls     int
}

func (s *scriptedFlow) RequestApproval(req approval.Request) approval.Response {
	if s.calls >= len(s.responses) {
		return approval.Response{Result: approval.Denied, Command: req.Command, Reason: "no more scripted responses"}
	}
	r := s.responses[s.calls]
	s.calls++
	if r.Command == "" {
		r.Command = req.Command
	}
	return r
}

func newController(flow approval.Flow) (*Controller, *audit.MemorySink) {
	sink := audit.NewMemorySink()
	c := NewController(classifier.New(), policy.NewManager(), flow, sink, nil)
	return c, sink
}

func operator() rbac.User { return rbac.User{ID: "op1", Role: rbac.RoleOperator} }

func TestBaselineBlock(t *testing.T) {
	c, sink := newController(&scriptedFlow{})
	d := c.ValidateAndApprove("rm -rf /", Context{User: operator(), Interactive: true})
	if d.Result != Blocked {
		t.Fatalf("result = %v, want BLOCKED", d.Result)
	}
	if d.Assessment.Level != classifier.CRITICAL {
		t.Errorf("expected CRITICAL-driven block, got %+v", d)
	}
	if !strings.Contains(strings.ToLower(d.Reason), "root filesystem") {
		t.Errorf("reason = %q, want it to name the matched pattern (root filesystem)", d.Reason)
	}
	if len(sink.Records) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(sink.Records))
	}
	if sink.Records[0].RiskLevel != classifier.CRITICAL {
		t.Errorf("audit record level = %v, want CRITICAL", sink.Records[0].RiskLevel)
	}
}

func TestHighRiskApproved(t *testing.T) {
	flow := &scriptedFlow{responses: []approval.Response{{Result: approval.Approved, ApproverID: "admin1"}}}
	c, sink := newController(flow)
	d := c.ValidateAndApprove("sudo apt install nginx", Context{User: operator(), Interactive: true})
	if d.Result != Allow {
		t.Fatalf("result = %v, want ALLOW", d.Result)
	}
	if d.ApprovedBy != "admin1" {
		t.Errorf("approved_by = %q, want admin1", d.ApprovedBy)
	}
	if len(sink.Records) != 1 || sink.Records[0].Outcome != "APPROVED" {
		t.Fatalf("audit = %+v", sink.Records)
	}
}

func TestHighRiskNonInteractive(t *testing.T) {
	c, sink := newController(&scriptedFlow{})
	d := c.ValidateAndApprove("sudo apt install nginx", Context{User: operator(), Interactive: false})
	if d.Result != Blocked {
		t.Fatalf("result = %v, want BLOCKED", d.Result)
	}
	if d.Reason != "Non-interactive mode, approval required" {
		t.Errorf("reason = %q", d.Reason)
	}
	if len(sink.Records) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(sink.Records))
	}
}

func TestEditToSafeReclassifies(t *testing.T) {
	flow := &scriptedFlow{responses: []approval.Response{
		{Result: approval.Edited, Command: "rm -rf ./old_data/v1"},
		{Result: approval.Approved, ApproverID: "admin1"},
	}}
	c, _ := newController(flow)
	d := c.ValidateAndApprove("rm -rf ./old_data", Context{User: operator(), Interactive: true})
	if d.Result != Allow {
		t.Fatalf("result = %v, want ALLOW", d.Result)
	}
	if d.Command != "rm -rf ./old_data/v1" {
		t.Errorf("command = %q, want the edited command", d.Command)
	}
	if d.Assessment.Command != "rm -rf ./old_data/v1" {
		t.Errorf("final assessment must be reclassified against the edited command, got %+v", d.Assessment)
	}
}

func TestParanoidModeLowRiskRequiresApproval(t *testing.T) {
	flow := &scriptedFlow{responses: []approval.Response{{Result: approval.Approved, ApproverID: "admin1"}}}
	c, _ := newController(flow)
	if err := c.Policies.LoadBytes([]byte("default_policy:\n  mode: paranoid\n")); err != nil {
		t.Fatalf("loading paranoid policy: %v", err)
	}
	d := c.ValidateAndApprove("mkdir data", Context{User: operator(), Interactive: true})
	if d.Result != Allow {
		t.Fatalf("result = %v, want ALLOW (after approval)", d.Result)
	}
	if !d.Assessment.RequiresApproval {
		t.Errorf("expected requires_approval=true on the assessment")
	}
}

func TestCheckNeverPrompts(t *testing.T) {
	flow := &scriptedFlow{} // would return a fallback denial if ever called
	c, _ := newController(flow)
	d := c.Check("sudo apt install nginx", Context{User: operator(), Interactive: true})
	if d.Result != NeedApproval {
		t.Fatalf("result = %v, want NEED_APPROVAL", d.Result)
	}
	if flow.calls != 0 {
		t.Errorf("Check must never drive the approval flow, calls = %d", flow.calls)
	}
}

func TestViewerDeniedOutrightAboveRunSafe(t *testing.T) {
	c, _ := newController(&scriptedFlow{})
	viewer := rbac.User{ID: "v1", Role: rbac.RoleViewer}
	d := c.ValidateAndApprove("sudo apt install nginx", Context{User: viewer, Interactive: true})
	if d.Result != Blocked {
		t.Fatalf("result = %v, want BLOCKED", d.Result)
	}
}

func TestDeviceBlockedCommandsOverrideClassifier(t *testing.T) {
	c, _ := newController(&scriptedFlow{})
	if err := c.Policies.LoadBytes([]byte(`
default_policy:
  mode: permissive
devices:
  - id: robot-1
    blocked_commands: ["ls"]
`)); err != nil {
		t.Fatalf("loading device policy: %v", err)
	}
	d := c.ValidateAndApprove("ls", Context{User: operator(), DeviceID: "robot-1", Interactive: true})
	if d.Result != Blocked {
		t.Fatalf("result = %v, want BLOCKED (device blocklist should override a SAFE classification)", d.Result)
	}
}

func TestAuditUnavailableFailsClosed(t *testing.T) {
	c, _ := newController(&scriptedFlow{})
	c.Audit = failingSink{}
	d := c.ValidateAndApprove("ls", Context{User: operator(), Interactive: true})
	if d.Result != Blocked || d.Reason != "audit-unavailable" {
		t.Fatalf("got %+v, want BLOCKED/audit-unavailable", d)
	}
}

type failingSink struct{}

func (failingSink) Write(audit.Record) error { return fmt.Errorf("disk full") }
