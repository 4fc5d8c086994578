package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/ledger"
	"github.com/jask/ledgerdesk/internal/period"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Orders   *repository.OrderRepo
	Expenses *repository.ExpenseRepo
}

// Options controls the generated volume. Zero values pick defaults.
type Options struct {
	Days  int
	Seed  int64
	Today time.Time
}

// Seed creates sample orders for both shifts across the last few days, plus
// a handful of expenses.
func Seed(ctx context.Context, repos Repos, categories []string, opts Options) error {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	if len(categories) == 0 {
		categories = []string{"Other"}
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	n := 0
	for d := 0; d < opts.Days; d++ {
		date := period.Format(opts.Today.AddDate(0, 0, -d))
		for _, shift := range ledger.ShiftChoices {
			for i := 0; i < 2+rng.Intn(3); i++ {
				n++
				o := repository.Order{
					ID:          uuid.NewString(),
					Date:        date,
					Shift:       shift,
					OrderNo:     fmt.Sprintf("%c-%03d", shift[0], n),
					AmountCents: int64(rng.Intn(4000)+200) * 100,
				}
				if err := repos.Orders.Insert(ctx, o); err != nil {
					return err
				}
			}
		}
		if rng.Intn(3) == 0 {
			continue
		}
		e := repository.Expense{
			ID:          uuid.NewString(),
			Date:        date,
			Category:    categories[rng.Intn(len(categories))],
			Memo:        "sample",
			AmountCents: int64(rng.Intn(1500)+50) * 100,
		}
		if err := repos.Expenses.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
