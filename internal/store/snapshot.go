package store

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is a portable dump of the stored list, written as YAML so it can
// be diffed and checked into version control.
type Snapshot struct {
	SavedAt time.Time      `yaml:"saved_at"`
	Lines   []SnapshotLine `yaml:"lines"`
}

// SnapshotLine is one task line in a snapshot.
type SnapshotLine struct {
	ID        string    `yaml:"id"`
	Text      string    `yaml:"line"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Dump serializes the current list state.
func (s *Store) Dump() ([]byte, error) {
	lines, err := s.All()
	if err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}

	snap := Snapshot{SavedAt: time.Now()}
	for _, l := range lines {
		snap.Lines = append(snap.Lines, SnapshotLine{
			ID:        l.ID,
			Text:      l.Text,
			CreatedAt: l.CreatedAt,
		})
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the stored list with a snapshot's contents.
func (s *Store) Restore(data []byte) error {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	lines := make([]Line, len(snap.Lines))
	for i, sl := range snap.Lines {
		lines[i] = Line{
			ID:        sl.ID,
			Text:      sl.Text,
			CreatedAt: sl.CreatedAt,
		}
	}

	if err := s.Replace(lines); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return nil
}
