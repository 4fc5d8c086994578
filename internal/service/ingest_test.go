package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/ledgerdesk/internal/database"
	"github.com/jask/ledgerdesk/internal/database/repository"
)

type fixture struct {
	db          *sql.DB
	orders      *repository.OrderRepo
	expenses    *repository.ExpenseRepo
	categorizer *CategorizerService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(context.Background(), db, []string{"Ingredients", "Rent", "Payroll", "Other"}))
	return fixture{
		db:          db,
		orders:      repository.NewOrderRepo(db),
		expenses:    repository.NewExpenseRepo(db),
		categorizer: &CategorizerService{Categories: repository.NewCategoryRepo(db)},
	}
}

func TestImportOrders(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := newFixture(t)
	svc := &IngestService{Orders: f.orders, Expenses: f.expenses, Categorizer: f.categorizer}

	data := "\ufeff" + strings.Join([]string{
		"date,shift,order_no,amount",
		"2026-02-03,Morning,A-1,\"1,500\"",
		"2026-02-03,晚班,A-2,200.5",
		"2026-02-03,Morning,A-1,1500",
		"not-a-date,Morning,A-3,1",
		"2026-02-04,Morning,A-4,abc",
	}, "\n")

	res, err := svc.ImportOrders(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 2)
	require.Contains(t, res.Errors[0].Error(), "line 5 date")
	require.Contains(t, res.Errors[1].Error(), "line 6 amount")

	orders, err := f.orders.List(ctx, repository.Filter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "Morning", orders[0].Shift)
	require.Equal(t, int64(150000), orders[0].AmountCents)
	require.Equal(t, "Evening", orders[1].Shift)
	require.Equal(t, int64(20050), orders[1].AmountCents)
}

func TestImportExpensesResolvesCategories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := &IngestService{Orders: f.orders, Expenses: f.expenses, Categorizer: f.categorizer}

	data := strings.Join([]string{
		"Date,Category,Memo,Amount",
		"2026-02-03,rent,February,900",
		"2026-02-03,,misc,5",
		"2026-02-03,Packaging,boxes,12",
	}, "\r\n")
	res, err := svc.ImportExpenses(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 3, res.Imported)

	exps, err := f.expenses.List(ctx, repository.Filter{})
	require.NoError(t, err)
	cats := []string{exps[0].Category, exps[1].Category, exps[2].Category}
	require.Equal(t, []string{"Rent", "Other", "Packaging"}, cats)

	names, err := repository.NewCategoryRepo(f.db).Names(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "Packaging")
}

func TestImportEmptyFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := &IngestService{Orders: f.orders, Expenses: f.expenses}
	_, err := svc.ImportOrders(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}
