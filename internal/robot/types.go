// Package robot implements the Robot Safety Controller: a lifecycle
// state machine with a latching emergency stop, plus a multi-check
// motion validator. It shares decision-shape conventions with the
// command-gating Security Controller but is otherwise independent.
//
// Unlike the reference implementation's process-wide
// get_safety_controller()/set_safety_controller() singleton, a
// Controller here is an explicitly constructed value the caller threads
// through the tool executor and motion publisher.
package robot

// State is the robot's lifecycle state.
type State string

const (
	Idle        State = "IDLE"
	Supervised  State = "SUPERVISED"
	Autonomous  State = "AUTONOMOUS"
	Maintenance State = "MAINTENANCE"
	Estop       State = "ESTOP"
)

var admissibleTransitions = map[State]map[State]bool{
	Idle:        {Supervised: true, Maintenance: true, Estop: true},
	Supervised:  {Idle: true, Autonomous: true, Estop: true},
	Autonomous:  {Supervised: true, Idle: true, Estop: true},
	Maintenance: {Idle: true, Estop: true},
	Estop:       {Idle: true},
}

// MotionKind tags the shape of a MotionCommand's target.
type MotionKind string

const (
	Velocity   MotionKind = "velocity"
	Position   MotionKind = "position"
	Trajectory MotionKind = "trajectory"
)

// Vector3 is a three-axis point or velocity.
type Vector3 struct {
	X, Y, Z float64
}

// MotionCommand is a candidate motion instruction.
type MotionCommand struct {
	Kind         MotionKind
	Target       Vector3
	Waypoints    []Vector3 // used when Kind == Trajectory
	Velocity     *float64  // linear speed, m/s, when explicitly specified
	AngularSpeed *float64  // angular speed, rad/s, when explicitly specified
	Acceleration *float64  // m/s^2, when explicitly specified
}

// RobotStatus is a snapshot fed into the motion validator. It is a
// value: produced by an external sensor layer, never shared or mutated
// by the Controller.
type RobotStatus struct {
	RobotID       string
	State         State
	BatteryLevel  float64 // 0-100
	EstopEngaged  bool
	Errors        []string
	HumanDetected bool
	HumanDistance float64 // meters
}

// Bounds is a min/max pair along one axis.
type Bounds struct {
	Min, Max float64
}

// WorkspaceBounds caps each axis of motion.
type WorkspaceBounds struct {
	X, Y, Z Bounds
}

func (b Bounds) contains(v float64) bool { return v >= b.Min && v <= b.Max }

// SafetyConstraints caps what validate_motion will allow.
type SafetyConstraints struct {
	MaxLinearVelocity  float64
	MaxAngularVelocity float64
	MaxAcceleration    float64
	MinBatteryLevel    float64
	HumanSafeDistance  float64
	HumanWarnDistance  float64
	WorkspaceBounds    WorkspaceBounds
	AllowedStates      map[State]bool
}

// DefaultSafetyConstraints mirrors the reference implementation's
// defaults, recovered from its test suite (no safety.py source
// survived distillation; the test file is ground truth for these
// values).
func DefaultSafetyConstraints() SafetyConstraints {
	return SafetyConstraints{
		MaxLinearVelocity:  1.0,
		MaxAngularVelocity: 1.5,
		MaxAcceleration:    2.0,
		MinBatteryLevel:    20.0,
		HumanSafeDistance:  0.5,
		HumanWarnDistance:  1.5,
		WorkspaceBounds: WorkspaceBounds{
			X: Bounds{Min: -5, Max: 5},
			Y: Bounds{Min: -5, Max: 5},
			Z: Bounds{Min: 0, Max: 3},
		},
		AllowedStates: map[State]bool{
			Supervised: true,
			Autonomous: true,
		},
	}
}

// Result is the terminal outcome of a motion validation.
type Result string

const (
	Approved      Result = "APPROVED"
	NeedsApproval Result = "NEEDS_APPROVAL"
	Blocked       Result = "BLOCKED"
	EstopActive   Result = "ESTOP_ACTIVE"
)

// Risk is the motion validator's own risk band, distinct from the
// command classifier's RiskLevel but sharing its vocabulary of names.
type Risk string

const (
	RiskLow      Risk = "LOW"
	RiskMedium   Risk = "MEDIUM"
	RiskHigh     Risk = "HIGH"
	RiskCritical Risk = "CRITICAL"
)

// Validation is validate_motion's output. Invariant: Allowed iff
// Result == Approved; RequiresApproval implies Result ==
// NeedsApproval; EstopActive implies Risk == Critical.
type Validation struct {
	Result           Result
	Risk             Risk
	Allowed          bool
	RequiresApproval bool
	Reasons          []string
}

func (s State) validTransitionTo(next State) bool {
	return admissibleTransitions[s][next]
}

func (s State) String() string { return string(s) }
