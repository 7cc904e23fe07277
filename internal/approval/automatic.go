package approval

import (
	"os/user"
	"time"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

// Automatic approves requests whose risk level is in its auto-approve
// set and denies everything else, without ever blocking. It is chosen
// at construction time in place of the interactive prompt. The Security
// Controller consults it only for requests whose Context.Interactive is
// true; a non-interactive request that needs approval is BLOCKED before
// any Flow is asked.
type Automatic struct {
	AutoApproveLevels map[classifier.RiskLevel]bool
	AutoDeny          bool
	approverID        string
}

// NewAutomatic returns an Automatic approver with the default
// auto-approve set {SAFE, LOW}.
func NewAutomatic() *Automatic {
	return &Automatic{
		AutoApproveLevels: map[classifier.RiskLevel]bool{
			classifier.SAFE: true,
			classifier.LOW:  true,
		},
		approverID: autoApproverID(),
	}
}

func autoApproverID() string {
	name := "unknown"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return "auto:" + name
}

// RequestApproval implements Flow for the automatic variant.
func (a *Automatic) RequestApproval(req Request) Response {
	if a.AutoDeny {
		return Response{
			Result:     Denied,
			Command:    req.Command,
			ApproverID: a.approverID,
			Timestamp:  time.Now(),
			Reason:     "Auto-deny enabled",
		}
	}

	if a.AutoApproveLevels[req.RiskLevel] {
		return Response{
			Result:     Approved,
			Command:    req.Command,
			ApproverID: a.approverID,
			Timestamp:  time.Now(),
		}
	}

	return Response{
		Result:     Denied,
		Command:    req.Command,
		ApproverID: a.approverID,
		Timestamp:  time.Now(),
		Reason:     "Risk level above auto-approve set",
	}
}
