package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "todotxt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestOpenRunsMigrations(t *testing.T) {
	s := openTestStore(t)
	lines, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(filepath.Join(dir, "todotxt.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestAppendKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	first, err := s.Append("water the plants @home")
	require.NoError(t, err)
	second, err := s.Append("(A) file taxes due:2026-04-15")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.Position, second.Position)

	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"water the plants @home", "(A) file taxes due:2026-04-15"}, texts(lines))
}

func TestGetMissIsNotAnError(t *testing.T) {
	s := openTestStore(t)
	l, err := s.Append("a task")
	require.NoError(t, err)

	got, err := s.Get(l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a task", got.Text)

	got, err = s.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindByPrefix(t *testing.T) {
	s := openTestStore(t)
	l, err := s.Append("locate me @anywhere")
	require.NoError(t, err)
	_, err = s.Append("decoy")
	require.NoError(t, err)

	got, err := s.Find(l.ID[:8])
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.ID, got.ID)

	got, err = s.Find("zzzzzzzz")
	require.NoError(t, err)
	assert.Nil(t, got)

	// An empty prefix matches every line.
	_, err = s.Find("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestUpdateKeepsPosition(t *testing.T) {
	s := openTestStore(t)
	l, err := s.Append("drafty wording")
	require.NoError(t, err)
	require.NoError(t, s.Update(l.ID, "final wording +docs"))

	got, err := s.Get(l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "final wording +docs", got.Text)
	assert.Equal(t, l.Position, got.Position)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	doomed, err := s.Append("on the way out")
	require.NoError(t, err)
	keeper, err := s.Append("sticking around")
	require.NoError(t, err)

	require.NoError(t, s.Delete(doomed.ID))

	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, keeper.ID, lines[0].ID)

	got, err := s.Get(doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReplace(t *testing.T) {
	s := openTestStore(t)
	a, err := s.Append("alpha")
	require.NoError(t, err)
	b, err := s.Append("beta")
	require.NoError(t, err)
	_, err = s.Append("dropped")
	require.NoError(t, err)

	// Reorder, rewrite one, drop one, add one without an ID.
	err = s.Replace([]Line{
		{ID: b.ID, Text: "beta v2", CreatedAt: b.CreatedAt},
		{ID: a.ID, Text: "alpha", CreatedAt: a.CreatedAt},
		{Text: "gamma"},
	})
	require.NoError(t, err)

	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"beta v2", "alpha", "gamma"}, texts(lines))
	assert.Equal(t, b.ID, lines[0].ID)
	assert.Equal(t, a.ID, lines[1].ID)
	assert.NotEmpty(t, lines[2].ID)
	for i, l := range lines {
		assert.Equal(t, i+1, l.Position)
	}
}

func TestReplaceFailureRollsBack(t *testing.T) {
	s := openTestStore(t)
	keeper, err := s.Append("keep me")
	require.NoError(t, err)

	// A duplicate id violates the primary key mid-transaction.
	err = s.Replace([]Line{
		{ID: keeper.ID, Text: "first"},
		{ID: keeper.ID, Text: "second"},
	})
	require.Error(t, err)

	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "keep me", lines[0].Text)
	assert.Equal(t, keeper.ID, lines[0].ID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	a, err := s.Append("(B) backup me @safe")
	require.NoError(t, err)
	b, err := s.Append("me too +archive")
	require.NoError(t, err)

	data, err := s.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(data), "backup me @safe")

	// Mangle the list, then restore the snapshot over it.
	require.NoError(t, s.Delete(a.ID))
	_, err = s.Append("interloper")
	require.NoError(t, err)

	require.NoError(t, s.Restore(data))

	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ID)
	assert.Equal(t, "(B) backup me @safe", lines[0].Text)
	assert.Equal(t, b.ID, lines[1].ID)
}

func TestRestoreRejectsGarbage(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Append("survivor")
	require.NoError(t, err)

	err = s.Restore([]byte("\tnot: yaml"))
	require.Error(t, err)

	// A failed restore leaves the stored list untouched.
	lines, err := s.All()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "survivor", lines[0].Text)
}

// Reads are materialized before any dependent query runs, so a read-modify
// loop cannot deadlock on the single SQLite connection.
func TestReadsAfterIterationNoDeadlock(t *testing.T) {
	s := openTestStore(t)
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		_, err := s.Append(text)
		require.NoError(t, err)
	}

	lines, err := s.All()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		for _, l := range lines {
			if _, err := s.Get(l.ID); err != nil {
				done <- err
				return
			}
			if err := s.Update(l.ID, l.Text+" touched"); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reads timed out, a connection is still held")
	}
}
