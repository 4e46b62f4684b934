package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"emberctl/internal/api"
	cliErrors "emberctl/internal/cli/errors"
	"emberctl/internal/config"
	"emberctl/internal/logger"
	"emberctl/internal/setup/session"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the config file (set via --config flag)
	cfgFile string

	// apiOverride is the panel base URL override (set via --api flag)
	apiOverride string

	// cfg holds the loaded configuration
	cfg *config.Config

	// log is the logger instance
	log *logger.Logger

	// auditLog is the audit logger instance
	auditLog *logger.AuditLogger

	// cmdStartTime tracks when command execution started
	cmdStartTime time.Time

	// cmdCtx is the command context with logger and command context
	cmdCtx context.Context

	verboseMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "emberctl",
	Short: "emberctl is the Ember panel setup CLI",
	Long: `emberctl configures a freshly installed Ember game server panel.

Run 'emberctl setup' on a new installation to walk through domains,
Discord sign-in, server selection, and role permissions.`,
	// Allow flags before or after subcommand
	TraverseChildren: true,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			// First boot has no config file yet; the wizard runs on
			// defaults rather than turning the operator away.
			if cmd.Name() != "setup" {
				return err
			}
			cfg = config.DefaultConfig()
			applyFlagOverrides(cmd)
		}

		// Initialize logger
		var err error
		log, err = logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// Initialize audit logger if configured
		if cfg.Log.AuditPath != "" {
			auditLog, err = logger.NewAuditLogger(cfg.Log.AuditPath, cfg.Log.AuditMaxAgeDays)
			if err != nil {
				log.Warn("failed to initialize audit logger", "error", err)
			}
		}

		// Create command context
		cc := logger.NewCommandContext(cmd, args)
		cmdCtx = logger.WithCommandContext(context.Background(), cc)
		cmdCtx = logger.WithLogger(cmdCtx, log)

		// Track start time for duration logging
		cmdStartTime = time.Now()

		// Log command start
		log.Debug("command started",
			"command", cc.Command,
			"args", cc.Args,
			"request_id", cc.RequestID,
			"user", cc.User,
			"hostname", cc.Hostname,
		)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log == nil {
			return nil
		}

		duration := time.Since(cmdStartTime)
		cc := logger.CommandContextFrom(cmdCtx)

		log.Debug("command completed",
			"command", cc.Command,
			"duration_ms", duration.Milliseconds(),
			"request_id", cc.RequestID,
		)

		// Log to audit if configured
		if auditLog != nil {
			auditLog.LogCommand(cmdCtx, cc.Command, logger.AuditOutcomeSuccess, map[string]any{
				"duration_ms": duration.Milliseconds(),
				"args":        cc.Args,
			})
		}

		// Cleanup
		if auditLog != nil {
			auditLog.Close()
		}
		log.Close()

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, cliErrors.DisplaySimple(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(onInitialize)

	// Accept underscore spellings of flag names (--no_browser).
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/emberctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiOverride, "api", "", "panel API base URL (e.g. http://panel.example.com)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "verbose output (includes full log output)")

	// Bind flags to viper
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api"))
}

// onInitialize is called before any command runs
func onInitialize() {
	// Auto-generate config on first run
	if cfgFile == "" {
		path, created, err := config.GenerateConfigIfNotExists()
		if err == nil && created {
			fmt.Fprintf(os.Stderr, "Created default config at: %s\n", path)
		}
	}
}

// loadConfig loads the configuration
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return cliErrors.ConfigInvalid(cfgFile, err)
	}

	applyFlagOverrides(cmd)
	return nil
}

// applyFlagOverrides layers command-line flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("api") {
		cfg.API.BaseURL = apiOverride
	}
	if verboseMode {
		cfg.Log.Level = "debug"
	}
}

// newClient builds a panel API client from the effective configuration.
func newClient() (*api.Client, error) {
	if cfg.API.BaseURL == "" {
		return nil, cliErrors.New(cliErrors.CodeConfigInvalid, "No panel API address configured").
			WithSuggestions(
				"Pass '--api http://panel.example.com'",
				"Set api.base_url in your config file",
			).
			WithDocURL("https://docs.ember.gg/panel/first-boot")
	}

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	})
	if err != nil {
		return nil, cliErrors.ConfigInvalid(cfgFile, err)
	}
	return client, nil
}

// stateStore opens the wizard session store.
func stateStore() (*session.Store, error) {
	dir := cfg.Setup.StateDir
	if dir == "" {
		var err error
		dir, err = session.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate state directory: %w", err)
		}
	}
	return session.NewStore(dir), nil
}
