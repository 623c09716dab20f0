package commands

import (
	"fmt"

	"github.com/fluxwms/dashforge/internal/catalog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what provision and deploy would create",
		Long:  `List the catalog contents without contacting any backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			styles := cc.Renderer.Styles()

			db := catalog.Database()
			cc.Renderer.Println(styles.Title.Render("BI catalog"))
			cc.Renderer.Printf("database connection: %s\n\n", db.Name())

			t := table.NewWriter()
			t.SetOutputMirror(cc.Renderer.Out())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Family", "Slug", "Dataset", "Charts"})
			for _, family := range catalog.Families() {
				slug := family.Slug
				if slug == "" {
					slug = "(charts only)"
				}
				t.AppendRow(table.Row{family.Title, slug, datasetName(family), len(family.Charts)})
			}
			t.Render()

			cc.Renderer.Println()
			cc.Renderer.Println(styles.Title.Render("Observability dashboards"))
			for _, tpl := range []struct {
				family string
				panels int
			}{
				{catalog.RedMetrics().Family, len(catalog.RedMetrics().Panels)},
				{catalog.Tracing(cc.Cfg.Namespace).Family, len(catalog.Tracing(cc.Cfg.Namespace).Panels)},
			} {
				cc.Renderer.Printf("  %-12s %d panels x %d services\n", tpl.family, tpl.panels, len(cc.Cfg.Services))
			}
			return nil
		},
	}
}

func datasetName(family catalog.Family) string {
	src := family.Dataset
	if src.Physical != nil {
		name := src.Physical.Table
		if src.Virtual != nil {
			name += " (virtual fallback)"
		}
		return name
	}
	if src.Virtual != nil {
		return fmt.Sprintf("%s (virtual)", src.Virtual.Name)
	}
	return "-"
}
