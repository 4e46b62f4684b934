package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"emberctl/internal/api"
	cliErrors "emberctl/internal/cli/errors"
	"emberctl/internal/tui"

	"github.com/spf13/cobra"
)

var statusFormat string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the panel setup status",
	Long: `Query the panel for its current setup state: which stages are done,
which guild was selected, and whether first-boot setup is complete.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "", "output format (text, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	snap, err := client.Status(cmdCtx)
	if err != nil {
		return cliErrors.ConnectionFailed(client.BaseURL(), err)
	}

	format := statusFormat
	if format == "" {
		format = cfg.Output.Format
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "", "text":
		printStatusText(snap)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

func printStatusText(snap *api.SetupStatus) {
	theme := tui.DefaultTheme()
	ind := tui.NewStatusIndicator()

	fmt.Println(tui.SmallBanner())
	fmt.Println()

	if snap.IsComplete {
		fmt.Println(ind.Success("Setup is complete"))
	} else {
		fmt.Println(ind.Pending(fmt.Sprintf("Setup in progress (current step: %s)", snap.CurrentStep)))
	}
	fmt.Println()

	stages := []struct {
		label string
		done  bool
	}{
		{"Panel domains", snap.Steps.SystemConfigured},
		{"Discord sign-in", snap.Steps.DiscordConfigured},
		{"Server selected", snap.Steps.GuildSelected},
		{"Roles configured", snap.Steps.RolesConfigured},
	}
	for _, st := range stages {
		icon := theme.StepPending.Render(tui.IconCircle)
		if st.done {
			icon = theme.Success.Render(tui.IconCheck)
		}
		fmt.Printf("  %s %s\n", icon, st.label)
	}

	items := map[string]string{}
	if snap.SelectedGuildID != "" {
		items["Guild ID"] = snap.SelectedGuildID
	}
	if snap.InstallerUserID != "" {
		items["Installer"] = snap.InstallerUserID
	}
	if len(items) > 0 {
		fmt.Println()
		fmt.Println(tui.NewKeyValue().RenderList(items, []string{"Guild ID", "Installer"}))
	}
}
