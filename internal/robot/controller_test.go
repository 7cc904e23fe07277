package robot

import "testing"

func newTestController() *Controller {
	return NewController(DefaultSafetyConstraints())
}

func TestTransitionGraphAllowsDocumentedEdges(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{Idle, Supervised, true},
		{Idle, Maintenance, true},
		{Idle, Autonomous, false},
		{Supervised, Autonomous, true},
		{Supervised, Maintenance, false},
		{Autonomous, Idle, true},
		{Maintenance, Supervised, false},
		{Maintenance, Idle, true},
	}
	for _, c := range cases {
		ctrl := newTestController()
		if c.from != Idle {
			// force into the "from" state where reachable via one legal hop from IDLE
			if c.from == Supervised {
				_ = ctrl.TransitionState(Supervised)
			} else if c.from == Autonomous {
				_ = ctrl.TransitionState(Supervised)
				_ = ctrl.TransitionState(Autonomous)
			} else if c.from == Maintenance {
				_ = ctrl.TransitionState(Maintenance)
			}
		}
		err := ctrl.TransitionState(c.to)
		if c.ok && err != nil {
			t.Errorf("%s -> %s: expected success, got error %v", c.from, c.to, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s -> %s: expected refusal", c.from, c.to)
		}
	}
}

func TestEstopLatchesAndRefusesOtherTransitions(t *testing.T) {
	ctrl := newTestController()
	ctrl.EngageEstop("test")
	if ctrl.State() != Estop {
		t.Fatalf("state = %v, want ESTOP", ctrl.State())
	}
	if err := ctrl.TransitionState(Supervised); err == nil {
		t.Fatalf("expected refusal while E-Stop latched")
	}
	if ctrl.State() != Estop {
		t.Fatalf("state changed despite refusal: %v", ctrl.State())
	}
	if err := ctrl.ReleaseEstop(); err != nil {
		t.Fatalf("ReleaseEstop: %v", err)
	}
	if ctrl.State() != Idle {
		t.Fatalf("state after release = %v, want IDLE", ctrl.State())
	}
}

func TestReleaseEstopRefusedWhenNotEngaged(t *testing.T) {
	ctrl := newTestController()
	if err := ctrl.ReleaseEstop(); err == nil {
		t.Fatalf("expected refusal: E-Stop not engaged")
	}
}

func TestStateChangeHandlerFires(t *testing.T) {
	ctrl := newTestController()
	var seen [2]State
	ctrl.OnStateChange(func(old, new State) { seen = [2]State{old, new} })
	_ = ctrl.TransitionState(Supervised)
	if seen[0] != Idle || seen[1] != Supervised {
		t.Errorf("handler saw %v, want [IDLE SUPERVISED]", seen)
	}
}

func TestValidateMotionEstopGateWins(t *testing.T) {
	ctrl := newTestController()
	ctrl.EngageEstop("test")
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, RobotStatus{State: Supervised})
	if v.Result != EstopActive || v.Risk != RiskCritical {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionEstopGateFromStatusToo(t *testing.T) {
	ctrl := newTestController()
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, RobotStatus{State: Supervised, EstopEngaged: true})
	if v.Result != EstopActive {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionBlockedInIdleState(t *testing.T) {
	ctrl := newTestController()
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, RobotStatus{State: Idle})
	if v.Result != Blocked || v.Risk != RiskHigh {
		t.Fatalf("got %+v", v)
	}
	if len(v.Reasons) == 0 {
		t.Fatal("expected a reason")
	}
}

func TestValidateMotionHumanTooClose(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, HumanDetected: true, HumanDistance: 0.3}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != Blocked || v.Risk != RiskHigh {
		t.Fatalf("got %+v", v)
	}
	if v.Reasons[0] != "Human detected within safe distance" {
		t.Errorf("reasons = %v", v.Reasons)
	}
}

func TestValidateMotionHumanNearbyNeedsApproval(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, HumanDetected: true, HumanDistance: 1.0}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != NeedsApproval {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionLowBatteryNeedsApproval(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, BatteryLevel: 10}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != NeedsApproval || !v.RequiresApproval {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionVelocityExceedsLimit(t *testing.T) {
	ctrl := newTestController()
	v2 := 5.0
	status := RobotStatus{State: Supervised, BatteryLevel: 100}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity, Velocity: &v2}, status)
	if v.Result != NeedsApproval {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionWorkspaceBoundsPerAxisReason(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, BatteryLevel: 100}
	cmd := MotionCommand{Kind: Position, Target: Vector3{X: 100, Y: 0, Z: 0}}
	v := ctrl.ValidateMotion(cmd, status)
	if v.Result != NeedsApproval {
		t.Fatalf("got %+v", v)
	}
	found := false
	for _, r := range v.Reasons {
		if r == "X position out of bounds" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want an X position reason", v.Reasons)
	}
}

func TestValidateMotionTrajectoryChecksEveryWaypoint(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, BatteryLevel: 100}
	cmd := MotionCommand{
		Kind: Trajectory,
		Waypoints: []Vector3{
			{X: 0, Y: 0, Z: 0},
			{X: 0, Y: 100, Z: 0},
		},
	}
	v := ctrl.ValidateMotion(cmd, status)
	if v.Result != NeedsApproval {
		t.Fatalf("got %+v, want NEEDS_APPROVAL for an out-of-bounds waypoint", v)
	}
}

func TestValidateMotionHealthErrorsNeedApproval(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, BatteryLevel: 100, Errors: []string{"joint fault"}}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != NeedsApproval {
		t.Fatalf("got %+v", v)
	}
}

func TestValidateMotionApprovedWhenNothingFires(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, BatteryLevel: 100}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != Approved || !v.Allowed {
		t.Fatalf("got %+v", v)
	}
	if v.Reasons[0] != "Motion approved" {
		t.Errorf("reasons = %v", v.Reasons)
	}
}

func TestValidateMotionRequiresApprovalOnlyWhenResultIsNeedsApproval(t *testing.T) {
	ctrl := newTestController()
	status := RobotStatus{State: Supervised, HumanDetected: true, HumanDistance: 0.3, BatteryLevel: 10}
	v := ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, status)
	if v.Result != Blocked {
		t.Fatalf("got %+v, want BLOCKED (human-too-close outranks low-battery)", v)
	}
	if v.RequiresApproval {
		t.Errorf("RequiresApproval = true alongside Result = BLOCKED, want false")
	}
}

func TestMotionBlockedHandlerFiresOnlyForDenials(t *testing.T) {
	ctrl := newTestController()
	blockedCount := 0
	ctrl.OnMotionBlocked(func(MotionCommand, []string) { blockedCount++ })

	// NEEDS_APPROVAL must not fire the handler.
	ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, RobotStatus{State: Supervised, BatteryLevel: 5})
	if blockedCount != 0 {
		t.Fatalf("NEEDS_APPROVAL should not fire motion-blocked handler, count=%d", blockedCount)
	}

	// BLOCKED must fire it.
	ctrl.ValidateMotion(MotionCommand{Kind: Velocity}, RobotStatus{State: Idle})
	if blockedCount != 1 {
		t.Fatalf("BLOCKED should fire motion-blocked handler once, count=%d", blockedCount)
	}
}
