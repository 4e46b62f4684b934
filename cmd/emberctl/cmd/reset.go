package cmd

import (
	"fmt"

	"emberctl/internal/api"
	cliErrors "emberctl/internal/cli/errors"
	"emberctl/internal/logger"
	"emberctl/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the panel setup and start over",
	Long: fmt.Sprintf(`Reset the panel to its first-boot state. All setup progress is
discarded: domains, the Discord binding, the selected server, and
role permissions.

The panel requires the literal confirmation phrase %q.
After a successful reset, the next 'emberctl setup' starts from the
beginning.`, api.ResetConfirmationPhrase),
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	store, err := stateStore()
	if err != nil {
		return err
	}

	var phrase string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Confirm reset").
				Description(fmt.Sprintf("Type %q to wipe the panel setup.", api.ResetConfirmationPhrase)).
				Validate(func(s string) error {
					if s != api.ResetConfirmationPhrase {
						return fmt.Errorf("phrase does not match")
					}
					return nil
				}).
				Value(&phrase),
		),
	).WithTheme(tui.HuhTheme())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return cliErrors.UserCancelled()
		}
		return err
	}

	err = client.Reset(cmdCtx, phrase)
	auditLog.LogMutation(cmdCtx, logger.AuditActionReset, "panel-setup", err, nil)
	if err != nil {
		if apiErr := api.AsError(err); apiErr != nil && apiErr.IsRateLimited() {
			return cliErrors.RateLimited(apiErr.RetryAfter)
		}
		return cliErrors.ConnectionFailed(client.BaseURL(), err)
	}

	// One-time grant so the next setup run may pass the completion guard.
	if err := store.GrantReset(); err != nil {
		log.Warn("could not write re-entry grant", "error", err)
	}
	if err := store.Clear(); err != nil {
		log.Warn("could not clear saved session", "error", err)
	}

	fmt.Println(tui.NewStatusIndicator().Success("Panel setup has been reset"))
	fmt.Println("Run 'emberctl setup' to configure the panel again.")
	return nil
}
