// Command agentshsecd is the composition root for the Safety &
// Governance Core: it wires the classifier, policy engine, RBAC,
// approval flow, audit sink, telemetry bus, robot safety controller,
// and Prometheus metrics into either a one-shot CLI command or a
// long-running HTTP gateway.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if Commit == "none" {
					Commit = setting.Value
				}
			case "vcs.time":
				if BuildDate == "unknown" {
					BuildDate = setting.Value
				}
			}
		}
	}
}

var rootCmd = &cobra.Command{
	Use:     "agentshsecd",
	Version: Version,
	Short:   "Safety and governance core for an agentic shell",
	Long: `agentshsecd classifies command risk, enforces security policy
and RBAC, drives human-in-the-loop approval, audits every decision, and
validates robot motion against a latching emergency stop and a set of
safety constraints.`,
}

func main() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	rootCmd.AddCommand(robotCmd)
	robotCmd.AddCommand(robotMotionCmd)
	robotCmd.AddCommand(robotEstopCmd)
	robotCmd.AddCommand(robotReleaseCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
