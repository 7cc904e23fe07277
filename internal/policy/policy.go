// Package policy implements the Policy Engine: a global security mode,
// an optional set of custom pattern lists and constraints, and
// per-device overrides, producing the effective SecurityPolicy the
// Security Controller consults for a given decision.
package policy

import (
	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

// SecurityMode is the global posture a policy operates under.
type SecurityMode int

const (
	Permissive SecurityMode = iota
	Standard
	Strict
	Paranoid
)

func (m SecurityMode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Standard:
		return "standard"
	case Strict:
		return "strict"
	case Paranoid:
		return "paranoid"
	default:
		return "unknown"
	}
}

// ParseSecurityMode maps a config-document token to a mode. Unknown
// names fall back to Standard, per the external-interfaces contract.
func ParseSecurityMode(s string) SecurityMode {
	switch s {
	case "permissive":
		return Permissive
	case "standard":
		return Standard
	case "strict":
		return Strict
	case "paranoid":
		return Paranoid
	default:
		return Standard
	}
}

// modeFloors fixes, per mode, the lowest level at which approval is
// required and the lowest level at which the mode alone blocks the
// action outright (independent of RBAC or the classifier's own
// is_blocked verdict).
type modeFloors struct {
	approvalFloor classifier.RiskLevel
	blockFloor    classifier.RiskLevel
}

var floorsByMode = map[SecurityMode]modeFloors{
	Permissive: {approvalFloor: classifier.CRITICAL + 1, blockFloor: classifier.CRITICAL},
	Standard:   {approvalFloor: classifier.HIGH, blockFloor: classifier.CRITICAL},
	Strict:     {approvalFloor: classifier.MEDIUM, blockFloor: classifier.HIGH},
	Paranoid:   {approvalFloor: classifier.LOW, blockFloor: classifier.MEDIUM},
}

// SecurityPolicy is immutable once constructed, either via a factory
// method or by loading a configuration document.
type SecurityPolicy struct {
	Name              string
	Mode              SecurityMode
	AllowSudo         bool
	AllowNetwork      bool
	MaxCommandLength  int
	ApprovalLevels    map[classifier.RiskLevel]bool
	BlockedPatterns   []string
	AllowedPatterns   []string
	BlockedPaths      []string
	AllowedPaths      []string
	Timeout           int // seconds
}

func newPolicy(name string, mode SecurityMode) SecurityPolicy {
	return SecurityPolicy{
		Name:             name,
		Mode:             mode,
		AllowSudo:        false,
		AllowNetwork:     true,
		MaxCommandLength: 4096,
		ApprovalLevels:   map[classifier.RiskLevel]bool{},
		Timeout:          30,
	}
}

// PermissivePolicy returns the default PERMISSIVE policy.
func PermissivePolicy() SecurityPolicy { return newPolicy("permissive", Permissive) }

// StandardPolicy returns the default STANDARD policy.
func StandardPolicy() SecurityPolicy { return newPolicy("standard", Standard) }

// StrictPolicy returns the default STRICT policy.
func StrictPolicy() SecurityPolicy {
	p := newPolicy("strict", Strict)
	p.AllowNetwork = false
	return p
}

// ParanoidPolicy returns the default PARANOID policy.
func ParanoidPolicy() SecurityPolicy {
	p := newPolicy("paranoid", Paranoid)
	p.AllowNetwork = false
	p.MaxCommandLength = 1024
	return p
}

// RequiresApproval reports whether level requires approval under this
// policy: either the mode's own floor, or an explicit per-level
// override in ApprovalLevels.
func (p SecurityPolicy) RequiresApproval(level classifier.RiskLevel) bool {
	if explicit, ok := p.ApprovalLevels[level]; ok {
		return explicit
	}
	return level >= floorsByMode[p.Mode].approvalFloor
}

// IsBlockedByMode reports whether the mode alone blocks level,
// independent of the classifier's own blocklist verdict or RBAC. Every
// mode blocks CRITICAL unconditionally.
func (p SecurityPolicy) IsBlockedByMode(level classifier.RiskLevel) bool {
	if level >= classifier.CRITICAL {
		return true
	}
	return level >= floorsByMode[p.Mode].blockFloor
}

// DevicePolicy overrides the default policy for calls naming a specific
// device. AllowedCommands/BlockedCommands are exact-string lists,
// checked before the general classifier/policy/RBAC sequence (per
// original_source/tests/unit/test_security_policies.py ordering).
type DevicePolicy struct {
	DeviceID         string
	Policy           SecurityPolicy
	AllowedCommands  []string
	BlockedCommands  []string
}
