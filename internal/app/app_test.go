package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/todotxt"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		DataDir: dir,
		DBPath:  filepath.Join(dir, "todotxt.db"),
	}
}

func openTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func entryTexts(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Task.String()
	}
	return out
}

func TestAddSurvivesReopen(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	e, err := a.Add("(A) write tests @dev")
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "(A) write tests @dev", e.Task.String())
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()

	entries := b.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.Equal(t, "(A) write tests @dev", entries[0].Task.String())
	assert.Equal(t, []string{"dev"}, b.List.Contexts())
}

func TestAddRejectsUnparsableLine(t *testing.T) {
	a := openTestApp(t)

	_, err := a.Add("two\nlines")
	assert.ErrorIs(t, err, todotxt.ErrParse)
	assert.Empty(t, a.Entries())
}

func TestEditKeepsIdentity(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	e, err := a.Add("drafty wording")
	require.NoError(t, err)
	id := e.ID

	require.NoError(t, a.Edit(e, "(B) final wording +docs"))
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "(B) final wording +docs", e.Task.String())
	assert.Equal(t, 1, a.List.Len())
	assert.Same(t, e, a.Entry(e.Task))
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()
	entries := b.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "(B) final wording +docs", entries[0].Task.String())
}

func TestSetCompletedStampsToday(t *testing.T) {
	a := openTestApp(t)
	e, err := a.Add("almost done")
	require.NoError(t, err)

	require.NoError(t, a.SetCompleted(e, true))
	assert.True(t, e.Task.Completed())
	assert.Equal(t, "x "+todotxt.Today().String()+" almost done", e.Task.String())

	require.NoError(t, a.SetCompleted(e, false))
	assert.Equal(t, "almost done", e.Task.String())
}

func TestPriorityMutationsPersist(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	e, err := a.Add("bump me")
	require.NoError(t, err)

	require.NoError(t, a.SetPriority(e, "C"))
	assert.Equal(t, "(C) bump me", e.Task.String())

	p, err := a.Raise(e, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", p.String())

	p, err = a.Lower(e, 2)
	require.NoError(t, err)
	assert.Equal(t, "D", p.String())

	require.NoError(t, a.SetPriority(e, ""))
	assert.Equal(t, "bump me", e.Task.String())

	_, err = a.Add("keep my priority")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, []string{"bump me", "keep my priority"}, entryTexts(b.Entries()))
}

func TestFindByPrefix(t *testing.T) {
	a := openTestApp(t)
	first, err := a.Add("locate me")
	require.NoError(t, err)
	_, err = a.Add("decoy")
	require.NoError(t, err)

	got, err := a.Find(first.ID[:8])
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = a.Find("zzzzzzzz")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = a.Find("")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	doomed, err := a.Add("on the way out @gone")
	require.NoError(t, err)
	_, err = a.Add("sticking around")
	require.NoError(t, err)

	require.NoError(t, a.Delete(doomed))
	assert.Equal(t, []string{"sticking around"}, entryTexts(a.Entries()))
	assert.Equal(t, 1, a.List.Len())
	assert.Empty(t, a.List.Contexts())
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, []string{"sticking around"}, entryTexts(b.Entries()))
}

func TestQuery(t *testing.T) {
	a := openTestApp(t)
	urgent, err := a.Add("(A) urgent @work")
	require.NoError(t, err)
	casual, err := a.Add("(C) casual")
	require.NoError(t, err)
	done, err := a.Add("x 2021-01-01 shipped")
	require.NoError(t, err)

	got, err := a.Query("is_completed=false")
	require.NoError(t, err)
	assert.Equal(t, []*Entry{urgent, casual}, got)

	got, err = a.Query("priority>=B")
	require.NoError(t, err)
	assert.Equal(t, []*Entry{urgent}, got)

	got, err = a.Query("")
	require.NoError(t, err)
	assert.Equal(t, []*Entry{urgent, casual, done}, got)

	_, err = a.Query("bogus")
	assert.ErrorIs(t, err, todotxt.ErrArgument)
}

func TestSortPersistsOrder(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Add("b task")
	require.NoError(t, err)
	_, err = a.Add("x 2021-01-01 2020-12-01 done thing")
	require.NoError(t, err)
	_, err = a.Add("(A) a task")
	require.NoError(t, err)

	require.NoError(t, a.Sort())
	want := []string{"(A) a task", "b task", "x 2021-01-01 2020-12-01 done thing"}
	assert.Equal(t, want, entryTexts(a.Entries()))
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, want, entryTexts(b.Entries()))
}

func TestSnapshotRestore(t *testing.T) {
	a := openTestApp(t)
	first, err := a.Add("(B) backup me @safe")
	require.NoError(t, err)
	second, err := a.Add("me too +archive")
	require.NoError(t, err)

	snap, err := a.Snapshot()
	require.NoError(t, err)

	require.NoError(t, a.Delete(first))
	_, err = a.Add("interloper")
	require.NoError(t, err)

	require.NoError(t, a.Restore(snap))
	entries := a.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "(B) backup me @safe", entries[0].Task.String())
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, []string{"safe"}, a.List.Contexts())
	assert.Equal(t, []string{"archive"}, a.List.Projects())
}

func TestLoadSkipsUnparsableRows(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Add("good task")
	require.NoError(t, err)
	// A row written by another tool can hold what our grammar rejects.
	_, err = a.Store.Append("broken\nline")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{"good task"}, entryTexts(b.Entries()))

	// The row is skipped, not deleted.
	lines, err := b.Store.All()
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestRenderHTML(t *testing.T) {
	a := openTestApp(t)
	_, err := a.Add("ship it @release")
	require.NoError(t, err)

	assert.Equal(t,
		`<div class="task">ship it <span class="context">@release</span></div>`,
		a.RenderHTML())
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODOTXT_DATA_DIR", dir)
	t.Setenv("TODOTXT_DEBUG", "1")

	cfg := DefaultConfig()
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "todotxt.db"), cfg.DBPath)
	assert.True(t, cfg.Debug)
}

func TestDefaultConfigPathFollowsDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODOTXT_DATA_DIR", dir)

	assert.Equal(t, filepath.Join(dir, "config.toml"), DefaultConfigPath())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.DataDir, "todotxt.db"), cfg.DBPath)
	assert.NotNil(t, cfg.HTML)
}

func TestLoadConfigMovesDatabaseWithDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	config := `
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "elsewhere")) + `"

[html]
element = "li"
`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "elsewhere"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "elsewhere", "todotxt.db"), cfg.DBPath)

	// The html table merges over the render defaults.
	assert.Equal(t, "li", cfg.HTML.Element)
	assert.Equal(t, "task", cfg.HTML.Class)
}

func TestLoadConfigPinnedDBPathWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	config := `
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "elsewhere")) + `"
db_path = "` + filepath.ToSlash(filepath.Join(dir, "pinned.db")) + `"
`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pinned.db"), cfg.DBPath)
}
