package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tafyai/agentsh-security-core/internal/audit"
	"github.com/tafyai/agentsh-security-core/internal/config"
	"github.com/tafyai/agentsh-security-core/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway, the policy hot-reload watcher, and the audit flush ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore()
		if err != nil {
			return err
		}

		watcher, err := config.NewPolicyWatcher(c.Config.Policy.Path, c.Policies, c.Log)
		if err != nil {
			return err
		}
		watcher.Start()
		defer watcher.Stop()

		ticker, err := audit.NewFlushTicker(c.Events)
		if err != nil {
			return err
		}
		ticker.Start()
		defer ticker.Stop()

		h := gateway.NewHandler(c.Security, c.Robot, c.Log, c.Metrics)
		router := gateway.NewRouter(h)

		srv := &http.Server{Addr: c.Config.Listen.Address, Handler: router}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-sigCh:
			return srv.Close()
		}
		return nil
	},
}
