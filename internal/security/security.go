// Package security is the composition root for the command-gating
// path: it sequences the classifier, device-literal overrides, policy
// engine, RBAC, and approval flow, and writes exactly one audit record
// per terminal decision.
package security

import (
	"strings"
	"time"

	"github.com/tafyai/agentsh-security-core/internal/approval"
	"github.com/tafyai/agentsh-security-core/internal/audit"
	"github.com/tafyai/agentsh-security-core/internal/classifier"
	"github.com/tafyai/agentsh-security-core/internal/metrics"
	"github.com/tafyai/agentsh-security-core/internal/policy"
	"github.com/tafyai/agentsh-security-core/internal/rbac"
	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

// Context is the input bundle for one decision.
type Context struct {
	User        rbac.User
	DeviceID    string
	Cwd         string
	Env         map[string]string
	Interactive bool
}

// DecisionResult is the terminal shape of a SecurityDecision.
type DecisionResult string

const (
	Allow         DecisionResult = "ALLOW"
	NeedApproval  DecisionResult = "NEED_APPROVAL"
	Blocked       DecisionResult = "BLOCKED"
)

// Decision is the Controller's terminal output.
type Decision struct {
	Result     DecisionResult
	Command    string
	Assessment classifier.CommandRiskAssessment
	Reason     string
	ApprovedBy string
}

// Controller sequences device overrides -> classifier -> policy -> RBAC
// -> approval -> audit. It holds immutable configuration references and
// writes through the audit sink's own lock, so decisions may be issued
// concurrently.
type Controller struct {
	Classifier *classifier.Classifier
	Policies   *policy.Manager
	Approval   approval.Flow
	Audit      audit.Sink
	Events     *telemetry.EventBus
	Metrics    *metrics.Metrics // optional; nil disables observation
}

// NewController wires the five collaborators into a Controller.
func NewController(c *classifier.Classifier, p *policy.Manager, a approval.Flow, sink audit.Sink, events *telemetry.EventBus) *Controller {
	return &Controller{Classifier: c, Policies: p, Approval: a, Audit: sink, Events: events}
}

func (c *Controller) observeApproval(result approval.Result) {
	if c.Metrics != nil {
		c.Metrics.ApprovalsTotal.WithLabelValues(string(result)).Inc()
	}
}

func (c *Controller) emit(kind telemetry.EventKind, payload map[string]any) {
	if c.Events != nil {
		c.Events.Emit(kind, payload)
	}
}

// finish writes one audit record and returns the terminal Decision. If
// the audit sink fails to write, the decision fails closed: it is
// forced to BLOCKED with an "audit-unavailable" reason regardless of
// what result was about to be returned, per the resource model's
// disposition for an unwritable audit log.
func (c *Controller) finish(result DecisionResult, command string, assessment classifier.CommandRiskAssessment, reason, approvedBy, actor, outcome string) Decision {
	if c.Audit != nil {
		r := audit.NewRecord(actor, command, assessment.Level, outcome, reason)
		if err := c.Audit.Write(r); err != nil {
			return c.decide(Blocked, command, assessment, "audit-unavailable", "")
		}
	}
	return c.decide(result, command, assessment, reason, approvedBy)
}

// Check runs the gating sequence without ever prompting: it returns
// NEED_APPROVAL instead of driving the approval flow, leaving that to
// the caller.
func (c *Controller) Check(command string, ctx Context) Decision {
	return c.run(command, ctx, false)
}

// ValidateAndApprove runs the full loop, including approval when
// required.
func (c *Controller) ValidateAndApprove(command string, ctx Context) Decision {
	return c.run(command, ctx, true)
}

func (c *Controller) run(command string, ctx Context, allowApproval bool) Decision {
	// Device-scoped literal overrides are checked first, ahead of the
	// general classifier/policy/RBAC sequence (original_source test
	// ordering for DevicePolicy.allowed_commands/blocked_commands).
	if ctx.DeviceID != "" {
		if dp, ok := c.Policies.GetDevicePolicy(ctx.DeviceID); ok {
			trimmed := command
			for _, blocked := range dp.BlockedCommands {
				if blocked == trimmed {
					assessment := c.Classifier.Classify(command)
					return c.finish(Blocked, command, assessment, "Blocked by device policy", "", ctx.User.ID, string(Blocked))
				}
			}
			for _, allowed := range dp.AllowedCommands {
				if allowed == trimmed {
					assessment := c.Classifier.Classify(command)
					return c.finish(Allow, command, assessment, "", "", ctx.User.ID, string(Allow))
				}
			}
		}
	}

	assessment := c.Classifier.Classify(command)
	c.emit(telemetry.SecurityClassified, map[string]any{
		"command": command, "level": assessment.Level.String(), "reasons": assessment.Reasons,
	})

	if assessment.IsBlocked {
		reason := "Command blocked: " + strings.Join(assessment.Reasons, ", ")
		return c.finish(Blocked, command, assessment, reason, "", ctx.User.ID, string(Blocked))
	}

	pol := c.Policies.GetPolicy(ctx.DeviceID)
	if pol.IsBlockedByMode(assessment.Level) {
		return c.finish(Blocked, command, assessment, "Blocked by security mode", "", ctx.User.ID, string(Blocked))
	}

	allowed, needsApproval, reason := rbac.CheckAccess(ctx.User, assessment.Level)
	if !allowed && !needsApproval {
		return c.finish(Blocked, command, assessment, reason, "", ctx.User.ID, string(Blocked))
	}

	if pol.RequiresApproval(assessment.Level) {
		needsApproval = true
		assessment.RequiresApproval = true
	}

	if needsApproval {
		if !allowApproval {
			return c.finish(NeedApproval, command, assessment, "", "", ctx.User.ID, string(NeedApproval))
		}

		if !ctx.Interactive {
			return c.finish(Blocked, command, assessment, "Non-interactive mode, approval required", "", ctx.User.ID, string(Blocked))
		}

		req := approval.NewRequest(command, assessment.Level, assessment.Reasons, contextSummary(ctx), time.Duration(pol.Timeout)*time.Second)
		c.emit(telemetry.ApprovalRequested, map[string]any{"command": command, "level": assessment.Level.String()})
		resp := c.Approval.RequestApproval(req)
		c.observeApproval(resp.Result)
		c.emit(telemetry.ApprovalResolved, map[string]any{"result": string(resp.Result), "approver": resp.ApproverID, "timestamp": resp.Timestamp})

		switch resp.Result {
		case approval.Approved:
			return c.finish(Allow, command, assessment, "", resp.ApproverID, resp.ApproverID, "APPROVED")

		case approval.Edited:
			// Recurse through the full gating sequence on the edited
			// command rather than a bare re-check: spec.md's open
			// question resolves this way to close an approval-bypass
			// where an edit to a still-high-risk command would
			// otherwise skip approval on the edited version.
			return c.ValidateAndApprove(resp.Command, ctx)

		case approval.Skipped:
			return c.finish(Blocked, command, assessment, "Approval skipped", "", ctx.User.ID, "DENIED")

		default: // Denied, TimedOut
			reason := resp.Reason
			if reason == "" {
				reason = "Approval " + string(resp.Result)
			}
			return c.finish(Blocked, command, assessment, reason, "", ctx.User.ID, "DENIED")
		}
	}

	return c.finish(Allow, command, assessment, "", "", ctx.User.ID, string(Allow))
}

func (c *Controller) decide(result DecisionResult, command string, assessment classifier.CommandRiskAssessment, reason, approvedBy string) Decision {
	d := Decision{Result: result, Command: command, Assessment: assessment, Reason: reason, ApprovedBy: approvedBy}
	c.emit(telemetry.SecurityDecision, map[string]any{
		"command": command, "level": assessment.Level.String(), "outcome": string(result), "approver": approvedBy,
	})
	return d
}

func contextSummary(ctx Context) string {
	summary := "user=" + ctx.User.ID
	if ctx.DeviceID != "" {
		summary += " device=" + ctx.DeviceID
	}
	if ctx.Cwd != "" {
		summary += " cwd=" + ctx.Cwd
	}
	return summary
}
