package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoriesRoundTrip(t *testing.T) {
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = "" })

	got, err := LoadCategories()
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, SaveCategories([]string{"Rent", "Other"}))
	got, err = LoadCategories()
	require.NoError(t, err)
	require.Equal(t, []string{"Rent", "Other"}, got)
}
