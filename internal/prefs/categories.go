// Package prefs caches small bits of client state between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const categoriesFile = "categories.json"

// Dir overrides the cache directory; empty means the user config dir.
var Dir string

func categoriesPath() (string, error) {
	dir := Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "ledgerdesk")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, categoriesFile), nil
}

// SaveCategories remembers the last category list fetched from the backend
// so choice editors work before the first fetch completes.
func SaveCategories(names []string) error {
	path, err := categoriesPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadCategories returns the cached list, or nil when there is none.
func LoadCategories() ([]string, error) {
	path, err := categoriesPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}
