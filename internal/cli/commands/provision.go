package commands

import (
	"fmt"

	"github.com/fluxwms/dashforge/internal/catalog"
	"github.com/fluxwms/dashforge/internal/provision"
	"github.com/fluxwms/dashforge/internal/superset"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewProvisionCommand creates the provision command.
func NewProvisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision BI datasets, charts, and dashboards",
		Long: `Provision the warehouse analytics catalog into the BI backend.

The run is idempotent: every resource is matched by name before anything is
created, so re-running after a partial failure reuses what already exists
and fills in the rest. Rejected resources are recorded and their dependents
skipped; only authentication, listing, or database-connection failures abort
the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ctx := cmd.Context()

			session, err := superset.Dial(ctx, cc.SupersetConfig())
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", cc.Cfg.Superset.URL, err)
			}

			styles := cc.Renderer.Styles()
			cc.Renderer.Println(styles.Title.Render("Provisioning analytics catalog"))

			runner := provision.NewRunner(session, provision.Options{
				Database: catalog.Database(),
				Families: catalog.Families(),
				Logger:   cc.Logger,
				Progress: func(kind superset.Kind, name string, status provision.Status) {
					label := string(status)
					switch status {
					case provision.StatusCreated:
						label = styles.Success.Render(label)
					case provision.StatusExists:
						label = styles.Muted.Render(label)
					case provision.StatusFailed:
						label = styles.Error.Render(label)
					case provision.StatusSkipped:
						label = styles.Warn.Render(label)
					}
					cc.Renderer.Printf("  %-9s %-45s %s\n", kind, name, label)
				},
			})

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			cc.Renderer.Println()
			renderSummary(cc, summary)

			if failed := summary.Count(provision.StatusFailed); failed > 0 {
				cc.Renderer.Printf("\n%s\n",
					styles.Warn.Render(fmt.Sprintf("%d resource(s) were rejected; re-run after fixing the catalog", failed)))
			}
			return nil
		},
	}
	return cmd
}

func renderSummary(cc *CommandContext, summary *provision.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(cc.Renderer.Out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Name", "Status"})
	for _, e := range summary.Entries {
		t.AppendRow(table.Row{e.Kind.String(), e.Name, string(e.Status)})
	}
	t.Render()

	cc.Renderer.Printf("run %s: %d created, %d existing, %d failed, %d skipped\n",
		summary.RunID,
		summary.Count(provision.StatusCreated),
		summary.Count(provision.StatusExists),
		summary.Count(provision.StatusFailed),
		summary.Count(provision.StatusSkipped))
}
