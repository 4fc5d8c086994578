package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/ledgerdesk/internal/database/repository"
)

// CategoryID derives a stable id from a category name.
func CategoryID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+strings.ToLower(strings.TrimSpace(name)))).String()
}

// SeedDefaults ensures baseline expense categories exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, names []string) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for idx, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		cat := repository.Category{ID: CategoryID(name), Name: name, SortOrder: idx}
		if err := catRepo.Upsert(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}
