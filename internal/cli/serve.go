package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/ledgerdesk/internal/notify"
	"github.com/jask/ledgerdesk/internal/testdata"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var seed bool
	var seedDays int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger backend over HTTP",
		Example: strings.TrimSpace(`
# Serve on the configured address
ledgerdesk serve

# Serve a throwaway database filled with sample data
ledgerdesk --db /tmp/demo.db serve --seed --addr 127.0.0.1:9000
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			if seed {
				st := newStores(db)
				names, err := st.categories.Names(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				opts := testdata.Options{Days: seedDays, Today: time.Now().In(app.tz)}
				if err := testdata.Seed(ctx, testdata.Repos{Orders: st.orders, Expenses: st.expenses}, names, opts); err != nil {
					return writeErr(cmd, fmt.Errorf("seed: %w", err))
				}
			}

			listen := strings.TrimSpace(addr)
			if listen == "" {
				listen = app.cfg.Server.Addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", app.cfg.Database.Path, listen)
			return newServer(app, db, notify.NewHub()).ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Insert sample orders and expenses before serving")
	cmd.Flags().IntVar(&seedDays, "seed-days", 7, "Days of sample data for --seed")
	return cmd
}
