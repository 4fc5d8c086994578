package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/ledgerdesk/internal/api"
	"github.com/jask/ledgerdesk/internal/config"
	"github.com/jask/ledgerdesk/internal/database"
	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/notify"
	"github.com/jask/ledgerdesk/internal/prefs"
	"github.com/jask/ledgerdesk/internal/server"
	"github.com/jask/ledgerdesk/internal/service"
	"github.com/jask/ledgerdesk/internal/tui"
)

type App struct {
	DBPath     string
	BaseURL    string
	Standalone bool

	cfg config.Config
	tz  *time.Location
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "ledgerdesk",
		Short:         "Shop ledger client: orders, expenses, KPIs and CSV reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive client against the configured backend
  ledgerdesk

  # Run client and backend in one process
  ledgerdesk --standalone

  # Serve the backend with a week of sample data
  ledgerdesk serve --seed

  # Download this month's sales report
  ledgerdesk export sales --scope month --out sales.csv
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		if app.DBPath != "" {
			cfg.Database.Path = app.DBPath
		}
		if app.BaseURL != "" {
			cfg.Server.BaseURL = app.BaseURL
		}
		tz, err := cfg.UI.Location()
		if err != nil {
			log.Printf("warn: %v; using local time", err)
		}
		app.cfg = cfg
		app.tz = tz
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to the sqlite database (overrides database.path)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Backend URL (overrides server.base_url)")
	cmd.Flags().BoolVar(&app.Standalone, "standalone", false, "Start an embedded backend on a loopback port")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newResetCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := app.cfg.Server.BaseURL
	var hub *notify.Hub
	if app.Standalone {
		db, err := openDB(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer db.Close()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return writeErr(cmd, err)
		}
		hub = notify.NewHub()
		srv := newServer(app, db, hub)
		go func() {
			if err := srv.Serve(ctx, ln); err != nil {
				log.Printf("warn: embedded backend: %v", err)
			}
		}()
		baseURL = "http://" + ln.Addr().String()
	}

	cats, err := prefs.LoadCategories()
	if err != nil {
		log.Printf("warn: load cached categories: %v", err)
	}
	if len(cats) == 0 {
		cats = app.cfg.UI.ExpenseCategories
	}

	return tui.Run(ctx, tui.Options{
		Backend:    api.New(baseURL, app.cfg.Server.Timeout),
		Notifier:   newNotifier(app.cfg, baseURL, hub),
		Format:     ledger.NewFormatter(app.cfg.UI.Locale),
		ExportDir:  app.cfg.Export.Dir,
		Currency:   app.cfg.UI.CurrencySymbol,
		TZ:         app.tz,
		Categories: cats,
		LogFile:    app.cfg.UI.LogFile,
	})
}

// newNotifier builds the dirty channel the views share. A nil hub means no
// backend runs in this process.
func newNotifier(cfg config.Config, baseURL string, hub *notify.Hub) notify.Notifier {
	switch cfg.Notify.Mode {
	case config.NotifyNone:
		return notify.Noop{}
	case config.NotifyRemote:
		return notify.NewRemote(baseURL, cfg.Notify.Topic, &http.Client{})
	default:
		if hub == nil {
			hub = notify.NewHub()
		}
		return hub.Topic(cfg.Notify.Topic)
	}
}

func openDB(app *App) (*sql.DB, error) {
	path := app.cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenMigrated(path)
	if err != nil {
		return nil, err
	}
	if err := database.SeedDefaults(context.Background(), db, app.cfg.UI.ExpenseCategories); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return db, nil
}

type stores struct {
	orders      *repository.OrderRepo
	expenses    *repository.ExpenseRepo
	categories  *repository.CategoryRepo
	categorizer *service.CategorizerService
}

func newStores(db *sql.DB) stores {
	cats := repository.NewCategoryRepo(db)
	return stores{
		orders:      repository.NewOrderRepo(db),
		expenses:    repository.NewExpenseRepo(db),
		categories:  cats,
		categorizer: &service.CategorizerService{Categories: cats},
	}
}

func newServer(app *App, db *sql.DB, hub *notify.Hub) *server.Server {
	st := newStores(db)
	return &server.Server{
		Records:    &service.RecordService{Orders: st.orders, Expenses: st.expenses, Categorizer: st.categorizer, TZ: app.tz},
		Export:     &service.ExportService{Orders: st.orders, Expenses: st.expenses},
		Orders:     st.orders,
		Expenses:   st.expenses,
		Categories: st.categories,
		Events:     hub,
		Topic:      app.cfg.Notify.Topic,
		TZ:         app.tz,
	}
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
