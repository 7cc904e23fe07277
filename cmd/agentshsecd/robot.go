package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tafyai/agentsh-security-core/internal/robot"
)

var robotCmd = &cobra.Command{
	Use:   "robot",
	Short: "Robot Safety Controller operations",
}

var (
	motionKind         string
	motionState        string
	motionBattery      float64
	motionHumanNear    bool
	motionHumanDist    float64
	motionTargetX      float64
	motionTargetY      float64
	motionTargetZ      float64
	estopReason        string
)

var robotMotionCmd = &cobra.Command{
	Use:   "motion",
	Short: "Validate a candidate motion command against the current safety constraints",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}

		mc := robot.MotionCommand{
			Kind:   robot.MotionKind(motionKind),
			Target: robot.Vector3{X: motionTargetX, Y: motionTargetY, Z: motionTargetZ},
		}
		status := robot.RobotStatus{
			State:         robot.State(strings.ToUpper(motionState)),
			BatteryLevel:  motionBattery,
			HumanDetected: motionHumanNear,
			HumanDistance: motionHumanDist,
		}

		v := c.Robot.ValidateMotion(mc, status)
		fmt.Fprintf(os.Stdout, "result:   %s\n", v.Result)
		fmt.Fprintf(os.Stdout, "risk:     %s\n", v.Risk)
		fmt.Fprintf(os.Stdout, "allowed:  %v\n", v.Allowed)
		fmt.Fprintf(os.Stdout, "reasons:  %s\n", strings.Join(v.Reasons, "; "))
		return nil
	},
}

var robotEstopCmd = &cobra.Command{
	Use:   "estop",
	Short: "Engage the latching emergency stop",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		c.Robot.EngageEstop(estopReason)
		fmt.Fprintf(os.Stdout, "state: %s\n", c.Robot.State())
		return nil
	},
}

var robotReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release a latched emergency stop",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		if err := c.Robot.ReleaseEstop(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "state: %s\n", c.Robot.State())
		return nil
	},
}

func init() {
	robotMotionCmd.Flags().StringVar(&motionKind, "kind", "velocity", "velocity|position|trajectory")
	robotMotionCmd.Flags().StringVar(&motionState, "state", "supervised", "robot lifecycle state")
	robotMotionCmd.Flags().Float64Var(&motionBattery, "battery", 100, "battery level percent")
	robotMotionCmd.Flags().BoolVar(&motionHumanNear, "human-detected", false, "a human is in the workspace")
	robotMotionCmd.Flags().Float64Var(&motionHumanDist, "human-distance", 10, "distance to the nearest human, meters")
	robotMotionCmd.Flags().Float64Var(&motionTargetX, "x", 0, "target X, for the position kind")
	robotMotionCmd.Flags().Float64Var(&motionTargetY, "y", 0, "target Y")
	robotMotionCmd.Flags().Float64Var(&motionTargetZ, "z", 0, "target Z")

	robotEstopCmd.Flags().StringVar(&estopReason, "reason", "manual", "reason recorded for the E-Stop")
}
