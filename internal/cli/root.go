// Package cli provides the command-line interface for dashforge.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fluxwms/dashforge/internal/cli/commands"
	"github.com/fluxwms/dashforge/internal/cli/config"
	"github.com/fluxwms/dashforge/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashforge",
		Short: "dashforge - Dashboard Provisioning",
		Long: `dashforge provisions the warehouse analytics stack: BI datasets, charts,
and dashboards against the data mesh, plus per-service observability
dashboards. Every operation is idempotent, so runs are safe to repeat.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with CLI flag overrides
			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Verbose runs get a debug logger on stderr; otherwise commands
			// fall back to the discard logger.
			if cfg.Verbose {
				logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			}

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.Output)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dashforge.yaml)")
	rootCmd.PersistentFlags().String("superset-url", "", "BI backend URL")
	rootCmd.PersistentFlags().String("superset-username", "", "BI backend username")
	rootCmd.PersistentFlags().String("superset-password", "", "BI backend password")
	rootCmd.PersistentFlags().String("grafana-url", "", "Observability backend URL")
	rootCmd.PersistentFlags().String("grafana-username", "", "Observability backend username")
	rootCmd.PersistentFlags().String("grafana-password", "", "Observability backend password")
	rootCmd.PersistentFlags().String("namespace", "", "Kubernetes namespace for log queries")
	rootCmd.PersistentFlags().StringSlice("services", nil, "Services to deploy dashboards for")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|plain)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "plain"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewProvisionCommand())
	rootCmd.AddCommand(commands.NewDeployCommand())
	rootCmd.AddCommand(commands.NewPlanCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Superset: config.BackendConfig{
			URL:      config.DefaultSupersetURL,
			Username: config.DefaultUser,
			Password: config.DefaultPassword,
		},
		Grafana: config.BackendConfig{
			URL:      config.DefaultGrafanaURL,
			Username: config.DefaultUser,
			Password: config.DefaultPassword,
		},
		Services:    config.DefaultServices(),
		Namespace:   config.DefaultNamespace,
		Datasources: config.DefaultDatasources(),
		Output:      config.DefaultOutput,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dashforge.

To load completions:

Bash:
  $ source <(dashforge completion bash)

Zsh:
  $ dashforge completion zsh > "${fpath[1]}/_dashforge"

Fish:
  $ dashforge completion fish | source

PowerShell:
  PS> dashforge completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
