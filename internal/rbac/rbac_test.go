package rbac

import (
	"testing"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

func TestViewerCannotExecuteAboveRunSafe(t *testing.T) {
	u := User{ID: "u1", Role: RoleViewer}
	allowed, needsApproval, reason := CheckAccess(u, classifier.MEDIUM)
	if allowed || needsApproval {
		t.Fatalf("VIEWER above RUN_SAFE must be denied outright, got allowed=%v needsApproval=%v", allowed, needsApproval)
	}
	if reason == "" {
		t.Errorf("expected a reason")
	}
}

func TestViewerCanReadAndRunSafe(t *testing.T) {
	u := User{ID: "u1", Role: RoleViewer}
	if allowed, _, _ := CheckAccess(u, classifier.SAFE); !allowed {
		t.Errorf("VIEWER should be allowed at SAFE")
	}
	if allowed, _, _ := CheckAccess(u, classifier.LOW); !allowed {
		t.Errorf("VIEWER should be allowed at LOW (RUN_SAFE)")
	}
}

func TestOperatorNeedsApprovalForHigh(t *testing.T) {
	u := User{ID: "u2", Role: RoleOperator}
	allowed, needsApproval, _ := CheckAccess(u, classifier.HIGH)
	if allowed {
		t.Errorf("OPERATOR should not be directly allowed at HIGH")
	}
	if !needsApproval {
		t.Errorf("OPERATOR should be able to escalate HIGH via approval")
	}
}

func TestOperatorAllowedAtMedium(t *testing.T) {
	u := User{ID: "u2", Role: RoleOperator}
	if allowed, _, _ := CheckAccess(u, classifier.MEDIUM); !allowed {
		t.Errorf("OPERATOR should be directly allowed at MEDIUM")
	}
}

func TestRootBypassesApprovalForAnyPermittedLevel(t *testing.T) {
	u := User{ID: "root", Role: RoleRoot}
	for l := classifier.SAFE; l <= classifier.CRITICAL; l++ {
		allowed, needsApproval, _ := CheckAccess(u, l)
		if !allowed || needsApproval {
			t.Errorf("ROOT at level %v: allowed=%v needsApproval=%v, want allowed=true needsApproval=false", l, allowed, needsApproval)
		}
	}
}

func TestAdminHoldsApproveAndConfigure(t *testing.T) {
	if !RoleAdmin.Has(PermApprove) || !RoleAdmin.Has(PermConfigure) {
		t.Errorf("ADMIN must hold APPROVE and CONFIGURE")
	}
}
