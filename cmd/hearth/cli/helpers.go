package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/hearthhq/hearth/internal/store"
)

// resolveDataDir returns the data directory from the --data-dir flag,
// HEARTH_DATA_DIR env var, or ~/.hearth as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("HEARTH_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hearth")
}

// openStore opens the record store using the configured driver and DSN.
// The sqlite driver keeps its database inside the data directory.
func openStore() (*store.Store, error) {
	driver := viper.GetString("database.driver")
	dsn := viper.GetString("database.dsn")
	if driver == "" || driver == "sqlite" {
		if dsn == "" {
			dsn = resolveDataDir()
		}
		return store.Open("sqlite", dsn)
	}
	return store.Open(driver, dsn)
}

// uploadDir returns the configured upload directory, defaulting to
// <data-dir>/uploads.
func uploadDir() string {
	if dir := viper.GetString("uploads.dir"); dir != "" {
		return dir
	}
	return filepath.Join(resolveDataDir(), "uploads")
}
