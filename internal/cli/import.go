package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/ledgerdesk/internal/service"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <orders|expenses> <file.csv>",
		Short: "Load orders or expenses from a CSV file with a header row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			if kind != service.KindOrders && kind != service.KindExpenses {
				return writeErr(cmd, fmt.Errorf("import: unknown kind %q (want orders or expenses)", kind))
			}
			f, err := os.Open(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()

			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			st := newStores(db)
			ingest := &service.IngestService{Orders: st.orders, Expenses: st.expenses, Categorizer: st.categorizer}
			var res service.IngestResult
			if kind == service.KindOrders {
				res, err = ingest.ImportOrders(cmd.Context(), f)
			} else {
				res, err = ingest.ImportExpenses(cmd.Context(), f)
			}
			if err != nil {
				return writeErr(cmd, fmt.Errorf("import %s: %w", args[1], err))
			}
			for _, e := range res.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, failed %d\n", res.Imported, res.Skipped, len(res.Errors))
			return nil
		},
	}
	return cmd
}
