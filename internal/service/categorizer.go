package service

import (
	"context"
	"strings"

	"github.com/jask/ledgerdesk/internal/database"
	"github.com/jask/ledgerdesk/internal/database/repository"
	"github.com/jask/ledgerdesk/internal/ledger"
)

// FallbackCategory receives expenses whose category is blank.
const FallbackCategory = "Other"

// CategorizerService maps free-text categories onto the stored list.
type CategorizerService struct {
	Categories *repository.CategoryRepo
}

// Resolve returns the canonical category for typed text. Blank input gets
// FallbackCategory; text close to a known category snaps to it; anything
// else is kept as typed.
func (s *CategorizerService) Resolve(ctx context.Context, typed string) string {
	typed = strings.TrimSpace(typed)
	if typed == "" {
		return FallbackCategory
	}
	names := s.categoryNames(ctx)
	for _, n := range names {
		if strings.EqualFold(n, typed) {
			return n
		}
	}
	if c, ok := ledger.ResolveChoice(typed, names); ok && len([]rune(typed)) >= 3 {
		return c
	}
	return typed
}

// Ensure stores a category that is not yet known so it shows up in choice
// lists.
func (s *CategorizerService) Ensure(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || s.Categories == nil {
		return nil
	}
	names := s.categoryNames(ctx)
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return nil
		}
	}
	return s.Categories.Upsert(ctx, repository.Category{ID: database.CategoryID(name), Name: name, SortOrder: len(names)})
}

func (s *CategorizerService) categoryNames(ctx context.Context) []string {
	if s.Categories == nil {
		return nil
	}
	names, err := s.Categories.Names(ctx)
	if err != nil {
		return nil
	}
	return names
}
