package main

import (
	"os"
	"path/filepath"

	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

// openSnapshot loads the snapshot at path into a temporary SQLite database.
// The returned func closes the database and removes its directory.
func openSnapshot(path, prefix string) (*storage.DB, func()) {
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitDataError, "graph snapshot not found: %s\n\nRun 'hepgraph build' first.", path)
	}

	tmpDir, err := os.MkdirTemp("", "hepgraph-"+prefix+"-")
	if err != nil {
		exitWithError(ExitError, "creating temp directory: %v", err)
	}
	db, err := storage.OpenDB(filepath.Join(tmpDir, "graph.db"))
	if err != nil {
		os.RemoveAll(tmpDir)
		exitWithError(ExitError, "opening database: %v", err)
	}
	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	n, err := db.RebuildFromJSONL(path)
	if err != nil {
		cleanup()
		exitWithError(ExitDataError, "loading graph: %v", err)
	}
	logger.Debug().Str("path", path).Int("records", n).Msg("snapshot loaded")
	return db, cleanup
}
