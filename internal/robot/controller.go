package robot

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// StateChangeHandler is notified after a successful state transition.
type StateChangeHandler func(old, new State)

// MotionBlockedHandler is notified when validate_motion denies motion
// outright (BLOCKED or ESTOP_ACTIVE) — not for NEEDS_APPROVAL, which is
// not a denial.
type MotionBlockedHandler func(cmd MotionCommand, reasons []string)

// Controller owns the robot's current state and constraints. All state
// transitions and validate_motion calls are expected to originate from
// one control loop; engage_estop is the documented exception and uses
// an atomic flag so it is safe to call from any goroutine, including an
// interrupt handler, while a validation is in flight.
type Controller struct {
	mu           sync.RWMutex
	state        State
	constraints  SafetyConstraints
	estopEngaged atomic.Bool
	estopReason  string

	onStateChange  []StateChangeHandler
	onMotionBlocked []MotionBlockedHandler
}

// NewController returns a Controller starting in IDLE with the given
// constraints.
func NewController(constraints SafetyConstraints) *Controller {
	return &Controller{
		state:       Idle,
		constraints: constraints,
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnStateChange registers h to fire after every successful transition.
func (c *Controller) OnStateChange(h StateChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = append(c.onStateChange, h)
}

// OnMotionBlocked registers h to fire whenever validate_motion denies
// motion outright.
func (c *Controller) OnMotionBlocked(h MotionBlockedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMotionBlocked = append(c.onMotionBlocked, h)
}

// TransitionState attempts to move to next. While E-Stop is latched,
// every transition except via ReleaseEstop is refused. An inadmissible
// transition is refused and leaves the state unchanged; both cases
// return an error describing the refusal.
func (c *Controller) TransitionState(next State) error {
	c.mu.Lock()

	if c.estopEngaged.Load() {
		c.mu.Unlock()
		return fmt.Errorf("refused: E-Stop is engaged, release it first")
	}

	old := c.state
	if !old.validTransitionTo(next) {
		c.mu.Unlock()
		return fmt.Errorf("refused: no transition from %s to %s", old, next)
	}

	c.state = next
	handlers := append([]StateChangeHandler(nil), c.onStateChange...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(old, next)
	}
	return nil
}

// EngageEstop is always accepted: it atomically sets the latch and
// moves the state to ESTOP, from any goroutine.
func (c *Controller) EngageEstop(reason string) {
	c.estopEngaged.Store(true)

	c.mu.Lock()
	old := c.state
	c.estopReason = reason
	c.state = Estop
	handlers := append([]StateChangeHandler(nil), c.onStateChange...)
	c.mu.Unlock()

	if old != Estop {
		for _, h := range handlers {
			h(old, Estop)
		}
	}
}

// ReleaseEstop clears the latch and transitions to IDLE. Refused when
// E-Stop is not currently engaged.
func (c *Controller) ReleaseEstop() error {
	if !c.estopEngaged.Load() {
		return fmt.Errorf("refused: E-Stop is not engaged")
	}

	c.estopEngaged.Store(false)

	c.mu.Lock()
	old := c.state
	c.estopReason = ""
	c.state = Idle
	handlers := append([]StateChangeHandler(nil), c.onStateChange...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(old, Idle)
	}
	return nil
}

// EstopEngaged reports whether E-Stop is currently latched.
func (c *Controller) EstopEngaged() bool {
	return c.estopEngaged.Load()
}

func (c *Controller) notifyMotionBlocked(cmd MotionCommand, reasons []string) {
	c.mu.RLock()
	handlers := append([]MotionBlockedHandler(nil), c.onMotionBlocked...)
	c.mu.RUnlock()
	for _, h := range handlers {
		h(cmd, reasons)
	}
}

// ValidateMotion applies the eight ordered checks against cmd and
// status, returning the most severe outcome encountered. Checks 3-8
// accumulate reasons onto whichever outcome they raise; checks 1-2 are
// exclusive (no further checks run once they fire).
func (c *Controller) ValidateMotion(cmd MotionCommand, status RobotStatus) Validation {
	// 1. E-Stop gate.
	if c.estopEngaged.Load() || status.EstopEngaged {
		v := Validation{Result: EstopActive, Risk: RiskCritical, Allowed: false, Reasons: []string{"E-Stop is engaged"}}
		c.notifyMotionBlocked(cmd, v.Reasons)
		return v
	}

	constraints := c.constraints

	// 2. State gate.
	if !constraints.AllowedStates[status.State] {
		v := Validation{
			Result:  Blocked,
			Risk:    RiskHigh,
			Allowed: false,
			Reasons: []string{fmt.Sprintf("Motion not allowed in state %s", status.State)},
		}
		c.notifyMotionBlocked(cmd, v.Reasons)
		return v
	}

	var reasons []string
	result := Approved
	risk := RiskLow

	raise := func(r Result, risk2 Risk, reason string) {
		reasons = append(reasons, reason)
		if severity(r) > severity(result) {
			result = r
			risk = risk2
		}
	}

	// 3. Human proximity.
	if status.HumanDetected {
		switch {
		case status.HumanDistance < constraints.HumanSafeDistance:
			raise(Blocked, RiskHigh, "Human detected within safe distance")
		case status.HumanDistance < constraints.HumanWarnDistance:
			raise(NeedsApproval, RiskMedium, "Human nearby")
		}
	}

	// 4. Battery.
	if status.BatteryLevel < constraints.MinBatteryLevel {
		raise(NeedsApproval, RiskMedium, fmt.Sprintf("Low battery (<%g%%)", constraints.MinBatteryLevel))
	}

	// 5. Velocity.
	if cmd.Velocity != nil && *cmd.Velocity > constraints.MaxLinearVelocity {
		raise(NeedsApproval, RiskMedium, "Velocity exceeds limit")
	}
	if cmd.AngularSpeed != nil && *cmd.AngularSpeed > constraints.MaxAngularVelocity {
		raise(NeedsApproval, RiskMedium, "Velocity exceeds limit")
	}

	// 6. Acceleration.
	if cmd.Acceleration != nil && *cmd.Acceleration > constraints.MaxAcceleration {
		raise(NeedsApproval, RiskMedium, "Acceleration exceeds limit")
	}

	// 7. Workspace bounds. Position-kind commands check the single
	// target; trajectory-kind commands check every waypoint too — an
	// enhancement over the reference implementation, which only ever
	// examined a position command's target (spec.md §9 leaves this an
	// open question and treats per-waypoint checking as an enhancement,
	// not a regression, so it is enabled here).
	if cmd.Kind == Position {
		checkBounds(constraints.WorkspaceBounds, cmd.Target, raise)
	} else if cmd.Kind == Trajectory {
		for _, wp := range cmd.Waypoints {
			checkBounds(constraints.WorkspaceBounds, wp, raise)
		}
	}

	// 8. Health.
	if len(status.Errors) > 0 {
		raise(NeedsApproval, RiskMedium, "Robot has active errors")
	}

	if result == Approved {
		reasons = []string{"Motion approved"}
	}

	v := Validation{
		Result:           result,
		Risk:             risk,
		Allowed:          result == Approved,
		RequiresApproval: result == NeedsApproval,
		Reasons:          reasons,
	}
	if result == Blocked {
		c.notifyMotionBlocked(cmd, reasons)
	}
	return v
}

func checkBounds(b WorkspaceBounds, p Vector3, raise func(Result, Risk, string)) {
	if !b.X.contains(p.X) {
		raise(NeedsApproval, RiskMedium, "X position out of bounds")
	}
	if !b.Y.contains(p.Y) {
		raise(NeedsApproval, RiskMedium, "Y position out of bounds")
	}
	if !b.Z.contains(p.Z) {
		raise(NeedsApproval, RiskMedium, "Z position out of bounds")
	}
}

func severity(r Result) int {
	switch r {
	case Approved:
		return 0
	case NeedsApproval:
		return 1
	case Blocked:
		return 2
	case EstopActive:
		return 3
	default:
		return -1
	}
}
