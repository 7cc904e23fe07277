package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tafyai/agentsh-security-core/internal/classifier"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <command...>",
	Short: "Classify a command's risk level without touching policy or approval",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := classifier.New()
		a := c.Classify(strings.Join(args, " "))

		fmt.Fprintf(os.Stdout, "level:      %s\n", a.Level)
		fmt.Fprintf(os.Stdout, "blocked:    %v\n", a.IsBlocked)
		fmt.Fprintf(os.Stdout, "reasons:    %s\n", strings.Join(a.Reasons, "; "))
		return nil
	},
}
