package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/export"
	"github.com/jask/ledgerdesk/internal/period"
	"github.com/jask/ledgerdesk/internal/service"
)

func newExportCmd(app *App) *cobra.Command {
	var scope, base, out string

	cmd := &cobra.Command{
		Use:   "export <orders|expenses|sales>",
		Short: "Download a CSV report from the backend",
		Example: strings.TrimSpace(`
# Orders of the current month into export.dir
ledgerdesk export orders

# Whole-year sales to a fixed path
ledgerdesk export sales --scope year --base 2026-01-01 --out sales-2026.csv
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			if !slices.Contains(service.ExportKinds, kind) {
				return writeErr(cmd, fmt.Errorf("export: unknown kind %q (want %s)", kind, strings.Join(service.ExportKinds, ", ")))
			}
			mode := period.ParseMode(scope)
			date := period.Format(period.ParseDate(base, time.Now().In(app.tz)))

			client := api.New(app.cfg.Server.BaseURL, app.cfg.Server.Timeout)
			d, err := client.Export(cmd.Context(), kind, string(mode), date)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer d.Body.Close()

			path := export.Target(out, app.cfg.Export.Dir, d.Filename, export.Filename(kind, string(mode), date))
			n, err := export.Save(path, d.Body)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("save %s: %w", path, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", string(period.Month), "Period: day, month, year or all")
	cmd.Flags().StringVar(&base, "base", "", "Any date inside the period, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default export.dir plus the suggested name)")
	return cmd
}
