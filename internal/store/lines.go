package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Line is one stored task line.
type Line struct {
	ID        string
	Text      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All returns every line in list order.
func (s *Store) All() ([]Line, error) {
	rows, err := s.db.Query(`
		SELECT id, line, position, created_at, updated_at
		FROM lines
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Text, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Get returns a single line by ID, or nil when there is none.
func (s *Store) Get(id string) (*Line, error) {
	row := s.db.QueryRow(`
		SELECT id, line, position, created_at, updated_at
		FROM lines WHERE id = ?
	`, id)

	var l Line
	err := row.Scan(&l.ID, &l.Text, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Find resolves an ID prefix to a line. It returns nil when nothing matches
// and an error when the prefix is ambiguous.
func (s *Store) Find(prefix string) (*Line, error) {
	rows, err := s.db.Query(`
		SELECT id, line, position, created_at, updated_at
		FROM lines WHERE id LIKE ? ORDER BY position
	`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Text, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// Append stores a new line at the end of the list.
func (s *Store) Append(text string) (*Line, error) {
	id := uuid.New().String()
	now := time.Now()

	var position int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM lines`).Scan(&position); err != nil {
		return nil, err
	}

	_, err := s.db.Exec(`
		INSERT INTO lines (id, line, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, text, position, now, now)
	if err != nil {
		return nil, err
	}

	return &Line{
		ID:        id,
		Text:      text,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update rewrites a line's text.
func (s *Store) Update(id, text string) error {
	now := time.Now()
	_, err := s.db.Exec(`UPDATE lines SET line = ?, updated_at = ? WHERE id = ?`, text, now, id)
	return err
}

// Delete removes a line.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM lines WHERE id = ?`, id)
	return err
}

// Replace rewrites the whole list in one transaction, keeping each line's
// identity and stamping new positions in slice order.
func (s *Store) Replace(lines []Line) error {
	return s.transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM lines`); err != nil {
			return err
		}
		now := time.Now()
		for i, l := range lines {
			if l.ID == "" {
				l.ID = uuid.New().String()
			}
			if l.CreatedAt.IsZero() {
				l.CreatedAt = now
			}
			_, err := tx.Exec(`
				INSERT INTO lines (id, line, position, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
			`, l.ID, l.Text, i+1, l.CreatedAt, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
