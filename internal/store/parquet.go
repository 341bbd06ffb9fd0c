package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// readTable loads a whole Parquet table into memory. A missing file is not
// an error: it is the empty table of a first run.
func readTable[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	return rows, nil
}

// writeTable replaces a Parquet table wholesale. The rows are written to a
// temporary file in the same directory and renamed over the target, so
// readers see either the old version or the new one, never a partial write.
func writeTable[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, rows); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace table %s: %w", path, err)
	}
	return nil
}
