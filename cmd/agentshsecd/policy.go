package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var policyDevice string

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the loaded security policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy for a device (or the default policy)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}
		p := c.Policies.GetPolicy(policyDevice)
		fmt.Fprintf(os.Stdout, "name:              %s\n", p.Name)
		fmt.Fprintf(os.Stdout, "mode:              %s\n", p.Mode)
		fmt.Fprintf(os.Stdout, "allow_sudo:        %v\n", p.AllowSudo)
		fmt.Fprintf(os.Stdout, "allow_network:     %v\n", p.AllowNetwork)
		fmt.Fprintf(os.Stdout, "max_command_length: %d\n", p.MaxCommandLength)
		fmt.Fprintf(os.Stdout, "timeout_seconds:   %d\n", p.Timeout)
		return nil
	},
}

func init() {
	policyShowCmd.Flags().StringVar(&policyDevice, "device", "", "device ID to resolve (empty for the default policy)")
}
