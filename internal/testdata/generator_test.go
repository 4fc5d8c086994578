package testdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/ledgerdesk/internal/database"
	"github.com/jask/ledgerdesk/internal/database/repository"
)

func TestSeedCoversBothShifts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := Repos{Orders: repository.NewOrderRepo(db), Expenses: repository.NewExpenseRepo(db)}
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, Seed(ctx, repos, []string{"Rent"}, Options{Days: 3, Seed: 42, Today: today}))

	tot, err := repos.Orders.Totals(ctx, "2026-03-08", "2026-03-10")
	require.NoError(t, err)
	require.Positive(t, tot.MorningCents)
	require.Positive(t, tot.EveningCents)
	require.Zero(t, tot.OtherCents)
}
