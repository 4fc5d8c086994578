package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategorizerResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]string{
		"":             FallbackCategory,
		"   ":          FallbackCategory,
		"rent":         "Rent",
		"Ingredient":   "Ingredients",
		"Payrol":       "Payroll",
		"Window glass": "Window glass",
		"Re":           "Re",
	}
	for in, want := range cases {
		require.Equal(t, want, f.categorizer.Resolve(ctx, in), "Resolve(%q)", in)
	}
}

func TestCategorizerEnsure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.categorizer.Ensure(ctx, "Laundry"))
	require.NoError(t, f.categorizer.Ensure(ctx, "laundry"))
	require.NoError(t, f.categorizer.Ensure(ctx, " "))

	names, err := f.categorizer.Categories.Names(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Ingredients", "Rent", "Payroll", "Other", "Laundry"}, names)
}

func TestCategorizerWithoutRepo(t *testing.T) {
	c := &CategorizerService{}
	require.Equal(t, "Fuel", c.Resolve(context.Background(), "Fuel"))
	require.NoError(t, c.Ensure(context.Background(), "Fuel"))
}
