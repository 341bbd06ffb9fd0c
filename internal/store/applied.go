package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// AppliedDates is the persisted set of batch dates already merged into the
// aggregate store. It exists so a rerun of an already-scraped day does not
// double-count: the aggregate merge is purely additive and has no
// transaction-level dedup of its own.
type AppliedDates struct {
	path  string
	dates map[string]struct{}
}

type appliedFile struct {
	Dates []string `json:"dates"`
}

// LoadAppliedDates reads the set from disk; a missing file is an empty set.
func LoadAppliedDates(path string) (*AppliedDates, error) {
	s := &AppliedDates{path: path, dates: map[string]struct{}{}}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read applied dates: %w", err)
	}

	var f appliedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse applied dates %s: %w", path, err)
	}
	for _, d := range f.Dates {
		s.dates[d] = struct{}{}
	}
	return s, nil
}

func (s *AppliedDates) Contains(date string) bool {
	_, ok := s.dates[date]
	return ok
}

// Mark records a date and persists the set via temp-file rename.
func (s *AppliedDates) Mark(date string) error {
	s.dates[date] = struct{}{}

	f := appliedFile{Dates: make([]string, 0, len(s.dates))}
	for d := range s.dates {
		f.Dates = append(f.Dates, d)
	}
	sort.Strings(f.Dates)

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
