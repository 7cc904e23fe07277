package policy

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

// document is the YAML shape of the policy configuration file, per
// the external-interfaces contract: a default policy plus a list of
// per-device overrides.
type document struct {
	DefaultPolicy policyDoc  `yaml:"default_policy"`
	Devices       []deviceDoc `yaml:"devices"`
}

type policyDoc struct {
	Name                  string   `yaml:"name"`
	Mode                  string   `yaml:"mode"`
	AllowSudo             bool     `yaml:"allow_sudo"`
	AllowNetwork          bool     `yaml:"allow_network"`
	MaxCommandLength      int      `yaml:"max_command_length"`
	RequireApprovalLevels []string `yaml:"require_approval_levels"`
	BlockedPatterns       []string `yaml:"blocked_patterns"`
	AllowedPatterns       []string `yaml:"allowed_patterns"`
	BlockedPaths          []string `yaml:"blocked_paths"`
	AllowedPaths          []string `yaml:"allowed_paths"`
	Timeout               int      `yaml:"timeout"`
}

type deviceDoc struct {
	ID              string    `yaml:"id"`
	Policy          policyDoc `yaml:"policy"`
	AllowedCommands []string  `yaml:"allowed_commands"`
	BlockedCommands []string  `yaml:"blocked_commands"`
}

func (d policyDoc) toPolicy(fallback SecurityPolicy) SecurityPolicy {
	p := fallback
	if d.Name != "" {
		p.Name = d.Name
	}
	if d.Mode != "" {
		p.Mode = ParseSecurityMode(d.Mode)
	}
	p.AllowSudo = d.AllowSudo
	p.AllowNetwork = d.AllowNetwork
	if d.MaxCommandLength > 0 {
		p.MaxCommandLength = d.MaxCommandLength
	}
	if d.Timeout > 0 {
		p.Timeout = d.Timeout
	}
	p.BlockedPatterns = d.BlockedPatterns
	p.AllowedPatterns = d.AllowedPatterns
	p.BlockedPaths = d.BlockedPaths
	p.AllowedPaths = d.AllowedPaths
	if len(d.RequireApprovalLevels) > 0 {
		p.ApprovalLevels = make(map[classifier.RiskLevel]bool, len(d.RequireApprovalLevels))
		for _, name := range d.RequireApprovalLevels {
			if level, ok := classifier.ParseRiskLevel(name); ok {
				p.ApprovalLevels[level] = true
			}
		}
	}
	return p
}

// snapshot is the immutable state a PolicyManager swaps atomically on
// reload.
type snapshot struct {
	defaultPolicy SecurityPolicy
	devices       map[string]DevicePolicy
}

// Manager resolves the effective SecurityPolicy for an optional device
// ID. It is loaded once from a configuration document and is safe to
// share across goroutines; LoadFile/LoadBytes perform a copy-on-write swap so
// in-flight readers never observe a half-updated configuration.
type Manager struct {
	state atomic.Pointer[snapshot]
}

// NewManager returns a Manager seeded with the STANDARD default policy
// and no device overrides.
func NewManager() *Manager {
	m := &Manager{}
	m.state.Store(&snapshot{
		defaultPolicy: StandardPolicy(),
		devices:       map[string]DevicePolicy{},
	})
	return m
}

// LoadFile loads a policy document from path. A missing, empty, or
// malformed document is not a fatal error: the manager falls back to
// the STANDARD default and returns the error for the caller to log to
// the telemetry channel, per the external-interfaces contract.
func (m *Manager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		m.resetToDefault()
		return fmt.Errorf("reading policy document %s: %w", path, err)
	}
	return m.LoadBytes(data)
}

// LoadBytes parses a policy document already read into memory.
func (m *Manager) LoadBytes(data []byte) error {
	if len(data) == 0 {
		m.resetToDefault()
		return fmt.Errorf("empty policy document")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		m.resetToDefault()
		return fmt.Errorf("parsing policy document: %w", err)
	}

	defaultPolicy := doc.DefaultPolicy.toPolicy(StandardPolicy())
	devices := make(map[string]DevicePolicy, len(doc.Devices))
	for _, d := range doc.Devices {
		devices[d.ID] = DevicePolicy{
			DeviceID:        d.ID,
			Policy:          d.Policy.toPolicy(defaultPolicy),
			AllowedCommands: d.AllowedCommands,
			BlockedCommands: d.BlockedCommands,
		}
	}

	m.state.Store(&snapshot{defaultPolicy: defaultPolicy, devices: devices})
	return nil
}

func (m *Manager) resetToDefault() {
	m.state.Store(&snapshot{defaultPolicy: StandardPolicy(), devices: map[string]DevicePolicy{}})
}

// GetPolicy returns the effective policy for deviceID ("" for none).
func (m *Manager) GetPolicy(deviceID string) SecurityPolicy {
	snap := m.state.Load()
	if deviceID == "" {
		return snap.defaultPolicy
	}
	if d, ok := snap.devices[deviceID]; ok {
		return d.Policy
	}
	return snap.defaultPolicy
}

// GetDevicePolicy returns the raw DevicePolicy (including its literal
// allow/block command lists) for deviceID, if one was configured.
func (m *Manager) GetDevicePolicy(deviceID string) (DevicePolicy, bool) {
	snap := m.state.Load()
	d, ok := snap.devices[deviceID]
	return d, ok
}
