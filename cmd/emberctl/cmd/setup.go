package cmd

import (
	"fmt"
	"os"

	cliErrors "emberctl/internal/cli/errors"
	"emberctl/internal/logger"
	"emberctl/internal/setup/status"
	"emberctl/internal/tui"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	setupFresh     bool
	setupNoBrowser bool
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the first-boot setup wizard",
	Long: `Walk through the Ember panel first-boot setup: panel domains,
Discord sign-in, server selection, and role permissions.

An interrupted run resumes where it left off. Use --fresh to discard
the saved session and start over from the beginning.

Examples:
  emberctl setup --api http://panel.example.com
  emberctl setup --fresh
  emberctl setup --no-browser   # print the sign-in URL instead of opening it`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupFresh, "fresh", false, "discard the saved wizard session and start over")
	setupCmd.Flags().BoolVar(&setupNoBrowser, "no-browser", false, "print the Discord sign-in URL instead of opening a browser")
}

func runSetup(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	store, err := stateStore()
	if err != nil {
		return err
	}

	if setupFresh {
		if err := store.Clear(); err != nil {
			log.Warn("could not clear saved session", "error", err)
		}
	}

	// An unreachable panel does not block the wizard; the first step
	// surfaces the connection error inline with a retry affordance.
	fetcher := status.NewFetcher(client, log)
	if snap := fetcher.Refresh(cmdCtx); snap == nil {
		log.Warn("setup status unavailable", "api", client.BaseURL())
	}

	switch fetcher.Gate(cmdCtx, store) {
	case status.DecisionRedirect:
		fmt.Fprint(os.Stderr, cliErrors.Display(cliErrors.SetupAlreadyComplete(), tui.DefaultTheme()))
		if cfg.Setup.DashboardURL != "" {
			if err := browser.OpenURL(cfg.Setup.DashboardURL); err != nil {
				log.Warn("could not open dashboard", "error", err)
			}
		}
		return nil
	case status.DecisionFreshRun:
		log.Info("re-entry grant consumed, starting over")
	}

	err = tui.RunSetup(tui.ModelConfig{
		Client:        client,
		Store:         store,
		Status:        fetcher,
		Log:           log,
		CallbackAddr:  cfg.Setup.CallbackAddr,
		NoBrowser:     setupNoBrowser || cfg.Setup.NoBrowser,
		DashboardURL:  cfg.Setup.DashboardURL,
		RedirectDelay: cfg.Setup.RedirectDelay,
	})
	auditLog.LogMutation(cmdCtx, logger.AuditActionComplete, "setup-wizard", err, nil)
	return err
}
