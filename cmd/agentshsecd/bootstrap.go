package main

import (
	"fmt"

	"github.com/tafyai/agentsh-security-core/internal/approval"
	"github.com/tafyai/agentsh-security-core/internal/audit"
	"github.com/tafyai/agentsh-security-core/internal/classifier"
	"github.com/tafyai/agentsh-security-core/internal/config"
	"github.com/tafyai/agentsh-security-core/internal/metrics"
	"github.com/tafyai/agentsh-security-core/internal/policy"
	"github.com/tafyai/agentsh-security-core/internal/rbac"
	"github.com/tafyai/agentsh-security-core/internal/robot"
	"github.com/tafyai/agentsh-security-core/internal/security"
	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

// core bundles every collaborator the CLI and gateway commands share.
type core struct {
	Config   *config.App
	Log      *telemetry.Logger
	Events   *telemetry.EventBus
	Metrics  *metrics.Metrics
	Policies *policy.Manager
	Security *security.Controller
	Robot    *robot.Controller
}

func buildCore() (*core, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	log := telemetry.NewLogger(1000)
	events := telemetry.NewEventBus()
	m := metrics.NewMetrics()

	policies := policy.NewManager()
	if err := policies.LoadFile(cfg.Policy.Path); err != nil {
		log.LogError("policy", err)
	}

	sink, err := audit.NewFileSink(cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("opening audit sink: %w", err)
	}

	var flow approval.Flow
	if cfg.Approval.Mode == "automatic" {
		auto := approval.NewAutomatic()
		auto.AutoDeny = cfg.Approval.AutoDeny
		if len(cfg.Approval.AutoApproveLevels) > 0 {
			auto.AutoApproveLevels = make(map[classifier.RiskLevel]bool, len(cfg.Approval.AutoApproveLevels))
			for _, name := range cfg.Approval.AutoApproveLevels {
				if level, ok := classifier.ParseRiskLevel(name); ok {
					auto.AutoApproveLevels[level] = true
				}
			}
		}
		flow = auto
	} else {
		flow = approval.NewInteractive()
	}

	sec := security.NewController(classifier.New(), policies, flow, sink, events)
	sec.Metrics = m

	rob := robot.NewController(robot.DefaultSafetyConstraints())
	wireRobotTelemetry(rob, events)

	return &core{
		Config:   cfg,
		Log:      log,
		Events:   events,
		Metrics:  m,
		Policies: policies,
		Security: sec,
		Robot:    rob,
	}, nil
}

// wireRobotTelemetry subscribes the robot Controller's state-change and
// motion-blocked callbacks to the shared EventBus, so robot.* events
// reach the same telemetry channel as the security.* and approval.*
// events the Security Controller emits directly.
func wireRobotTelemetry(rob *robot.Controller, events *telemetry.EventBus) {
	rob.OnStateChange(func(old, next robot.State) {
		events.Emit(telemetry.RobotStateTransition, map[string]any{"from": string(old), "to": string(next)})
		switch {
		case next == robot.Estop:
			events.Emit(telemetry.RobotEstopEngaged, map[string]any{"from": string(old)})
		case old == robot.Estop:
			events.Emit(telemetry.RobotEstopReleased, map[string]any{"to": string(next)})
		}
	})
	rob.OnMotionBlocked(func(cmd robot.MotionCommand, reasons []string) {
		events.Emit(telemetry.RobotMotionBlocked, map[string]any{"kind": string(cmd.Kind), "reasons": reasons})
	})
}

// resolveUser builds an rbac.User from the configured role assignments,
// defaulting to VIEWER for unknown IDs.
func (c *core) resolveUser(userID string) rbac.User {
	for _, u := range c.Config.Users {
		if u.ID == userID {
			return rbac.User{ID: userID, Role: rbac.Role(u.Role)}
		}
	}
	return rbac.User{ID: userID, Role: rbac.RoleViewer}
}
