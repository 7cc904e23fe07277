// Package gateway exposes the Security Controller and Robot Safety
// Controller over HTTP, using gorilla/mux, in place of the out-of-scope
// RPC server this core sits behind — only that server's contract
// (check/validate/motion/estop endpoints) matters here.
package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tafyai/agentsh-security-core/internal/metrics"
	"github.com/tafyai/agentsh-security-core/internal/rbac"
	"github.com/tafyai/agentsh-security-core/internal/robot"
	"github.com/tafyai/agentsh-security-core/internal/security"
	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

// Handler serves the security and robot-safety HTTP surface.
type Handler struct {
	Security *security.Controller
	Robot    *robot.Controller
	Log      *telemetry.Logger
	Metrics  *metrics.Metrics
}

// NewHandler wires the two controllers into a Handler. metrics may be
// nil, in which case no observations are recorded.
func NewHandler(sec *security.Controller, rob *robot.Controller, log *telemetry.Logger, m *metrics.Metrics) *Handler {
	if sec != nil {
		sec.Metrics = m
	}
	return &Handler{Security: sec, Robot: rob, Log: log, Metrics: m}
}

func (h *Handler) toContext(req CheckRequest) security.Context {
	return security.Context{
		User:        rbac.User{ID: req.UserID, Role: rbac.Role(req.Role)},
		DeviceID:    req.DeviceID,
		Cwd:         req.Cwd,
		Env:         req.Env,
		Interactive: req.Interactive,
	}
}

func decisionResponse(d security.Decision) DecisionResponse {
	return DecisionResponse{
		Result:     string(d.Result),
		Command:    d.Command,
		RiskLevel:  d.Assessment.Level.String(),
		IsBlocked:  d.Assessment.IsBlocked,
		Reasons:    d.Assessment.Reasons,
		Reason:     d.Reason,
		ApprovedBy: d.ApprovedBy,
	}
}

// HandleCheck runs the gating sequence without driving the approval
// flow: a NEED_APPROVAL result is returned for the caller to act on.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	d := h.Security.Check(req.Command, h.toContext(req))
	h.observeDecision(d)
	writeJSON(w, decisionResponse(d))
}

// HandleValidate runs the full gating sequence, including approval when
// required.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	d := h.Security.ValidateAndApprove(req.Command, h.toContext(req))
	if h.Metrics != nil {
		h.Metrics.DecisionLatency.Observe(time.Since(start).Seconds())
	}
	h.observeDecision(d)
	writeJSON(w, decisionResponse(d))
}

func (h *Handler) observeDecision(d security.Decision) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.ClassificationsTotal.WithLabelValues(d.Assessment.Level.String()).Inc()
	h.Metrics.DecisionsTotal.WithLabelValues(string(d.Result)).Inc()
}

func vector3(v []float64) robot.Vector3 {
	var out robot.Vector3
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}

// HandleMotion validates a candidate robot motion command.
func (h *Handler) HandleMotion(w http.ResponseWriter, r *http.Request) {
	var req MotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	cmd := robot.MotionCommand{
		Kind:         robot.MotionKind(req.Kind),
		Target:       vector3(req.Target),
		Velocity:     req.Velocity,
		AngularSpeed: req.AngularSpeed,
		Acceleration: req.Acceleration,
	}
	for _, wp := range req.Waypoints {
		cmd.Waypoints = append(cmd.Waypoints, vector3(wp))
	}

	status := robot.RobotStatus{
		RobotID:       req.RobotID,
		State:         robot.State(req.State),
		BatteryLevel:  req.BatteryLevel,
		EstopEngaged:  req.EstopEngaged,
		Errors:        req.Errors,
		HumanDetected: req.HumanDetected,
		HumanDistance: req.HumanDistance,
	}

	v := h.Robot.ValidateMotion(cmd, status)
	if h.Metrics != nil {
		h.Metrics.MotionChecksTotal.WithLabelValues(string(v.Result)).Inc()
	}
	writeJSON(w, MotionResponse{
		Result:           string(v.Result),
		Risk:             string(v.Risk),
		Allowed:          v.Allowed,
		RequiresApproval: v.RequiresApproval,
		Reasons:          v.Reasons,
	})
}

// HandleEstop engages the latching emergency stop.
func (h *Handler) HandleEstop(w http.ResponseWriter, r *http.Request) {
	var req EstopRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	h.Robot.EngageEstop(req.Reason)
	writeJSON(w, map[string]string{"state": string(h.Robot.State())})
}

// HandleReleaseEstop releases a latched emergency stop.
func (h *Handler) HandleReleaseEstop(w http.ResponseWriter, r *http.Request) {
	if err := h.Robot.ReleaseEstop(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"state": string(h.Robot.State())})
}

// HandleClassify runs the classifier alone, without policy/RBAC/approval.
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	a := h.Security.Classifier.Classify(req.Command)
	writeJSON(w, struct {
		Level     string   `json:"level"`
		IsBlocked bool     `json:"is_blocked"`
		Reasons   []string `json:"reasons"`
	}{a.Level.String(), a.IsBlocked, a.Reasons})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
