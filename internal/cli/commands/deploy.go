package commands

import (
	"fmt"

	"github.com/fluxwms/dashforge/internal/catalog"
	"github.com/fluxwms/dashforge/internal/grafana"
	"github.com/spf13/cobra"
)

// NewDeployCommand creates the deploy command group.
func NewDeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy observability dashboards",
		Long: `Deploy generated observability dashboards, one per service.

Dashboards are created-or-overwritten by uid, so deploys are repeatable.
Use --clean to delete previously deployed dashboards of the family first.`,
	}

	cmd.AddCommand(newDeployRedMetricsCommand())
	cmd.AddCommand(newDeployTracingCommand())
	cmd.AddCommand(newDeployFileCommand())
	return cmd
}

func newDeployRedMetricsCommand() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "red-metrics",
		Short: "Deploy RED metrics dashboards for every service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deployFamily(cmd, catalog.RedMetrics(), clean)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "delete existing dashboards of this family first")
	return cmd
}

func newDeployTracingCommand() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "tracing",
		Short: "Deploy tracing dashboards for every service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			return deployFamilyWith(cmd, cc, catalog.Tracing(cc.Cfg.Namespace), clean)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "delete existing dashboards of this family first")
	return cmd
}

func newDeployFileCommand() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Deploy a dashboard JSON file as-is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			client := cc.GrafanaClient()

			uid, err := client.DeployFile(cmd.Context(), args[0], clean)
			if err != nil {
				return fmt.Errorf("deploying %s: %w", args[0], err)
			}
			cc.Renderer.Printf("deployed %s (uid %s)\n", args[0], uid)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "delete the dashboard by uid before deploying")
	return cmd
}

func deployFamily(cmd *cobra.Command, tpl grafana.DashboardTemplate, clean bool) error {
	return deployFamilyWith(cmd, NewCommandContext(cmd), tpl, clean)
}

func deployFamilyWith(cmd *cobra.Command, cc *CommandContext, tpl grafana.DashboardTemplate, clean bool) error {
	ctx := cmd.Context()
	client := cc.GrafanaClient()
	styles := cc.Renderer.Styles()

	if clean {
		removed, err := client.Clean(ctx, tpl.Family)
		if err != nil {
			return err
		}
		cc.Renderer.Printf("removed %d existing %s dashboard(s)\n", removed, tpl.Family)
	}

	cc.Renderer.Println(styles.Title.Render(fmt.Sprintf("Deploying %s dashboards", tpl.Family)))

	var failed int
	for _, service := range cc.Cfg.Services {
		payload := tpl.Build(service, cc.Cfg.Datasources)
		uid, err := client.CreateOrUpdate(ctx, payload)
		if err != nil {
			failed++
			cc.Renderer.Printf("  %-45s %s\n", tpl.Title(service), styles.Error.Render("failed"))
			cc.Logger.Warn("dashboard deploy failed", "service", service, "family", tpl.Family, "error", err)
			continue
		}
		cc.Renderer.Printf("  %-45s %s\n", tpl.Title(service), styles.Success.Render("ok (uid "+uid+")"))
	}

	deployed := len(cc.Cfg.Services) - failed
	cc.Renderer.Printf("\n%d deployed, %d failed\n", deployed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d dashboards failed to deploy", failed, len(cc.Cfg.Services))
	}
	return nil
}
