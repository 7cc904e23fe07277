package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tafyai/agentsh-security-core/internal/security"
)

var (
	checkUser     string
	checkDevice   string
	checkInteractive bool
)

func registerCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkUser, "user", "cli-user", "acting user ID")
	cmd.Flags().StringVar(&checkDevice, "device", "", "target device ID, if any")
	cmd.Flags().BoolVar(&checkInteractive, "interactive", true, "allow a terminal approval prompt")
}

var checkCmd = &cobra.Command{
	Use:   "check <command...>",
	Short: "Run the gating sequence without ever prompting for approval",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		ctx := security.Context{User: c.resolveUser(checkUser), DeviceID: checkDevice, Interactive: checkInteractive}
		d := c.Security.Check(strings.Join(args, " "), ctx)
		printDecision(d)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "approve <command...>",
	Short: "Run the full gating sequence, prompting for approval when required",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		ctx := security.Context{User: c.resolveUser(checkUser), DeviceID: checkDevice, Interactive: checkInteractive}
		d := c.Security.ValidateAndApprove(strings.Join(args, " "), ctx)
		printDecision(d)
		return nil
	},
}

func init() {
	registerCommonFlags(checkCmd)
	registerCommonFlags(validateCmd)
}

func printDecision(d security.Decision) {
	fmt.Fprintf(os.Stdout, "result:     %s\n", d.Result)
	fmt.Fprintf(os.Stdout, "command:    %s\n", d.Command)
	fmt.Fprintf(os.Stdout, "level:      %s\n", d.Assessment.Level)
	if d.Reason != "" {
		fmt.Fprintf(os.Stdout, "reason:     %s\n", d.Reason)
	}
	if d.ApprovedBy != "" {
		fmt.Fprintf(os.Stdout, "approved_by: %s\n", d.ApprovedBy)
	}
}
