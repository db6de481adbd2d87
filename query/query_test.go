package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/todotxt"
)

func mustTask(t *testing.T, l *todotxt.List, line string) *todotxt.Task {
	t.Helper()
	task, err := l.Parse(line)
	require.NoError(t, err)
	return task
}

func TestParse(t *testing.T) {
	q, err := Parse("priority>=B due_date<2021-01-01 contexts~work is_completed=false")
	require.NoError(t, err)
	require.Len(t, q, 4)
	assert.Equal(t, Clause{Attr: "priority", Op: Ge, Value: "B"}, q[0])
	assert.Equal(t, Clause{Attr: "due_date", Op: Lt, Value: "2021-01-01"}, q[1])
	assert.Equal(t, Clause{Attr: "contexts", Op: Contains, Value: "work"}, q[2])
	assert.Equal(t, Clause{Attr: "is_completed", Op: Eq, Value: "false"}, q[3])

	q, err = Parse("priority!=A")
	require.NoError(t, err)
	assert.Equal(t, Clause{Attr: "priority", Op: Ne, Value: "A"}, q[0])

	// An empty value is legal: priority= matches unprioritized tasks.
	q, err = Parse("priority=")
	require.NoError(t, err)
	assert.Equal(t, Clause{Attr: "priority", Op: Eq, Value: ""}, q[0])

	q, err = Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, q)

	_, err = Parse("nonsense")
	assert.ErrorIs(t, err, todotxt.ErrArgument)
}

func TestSingularAttributeFallback(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	task1 := mustTask(t, l, "(A) Lorem ipsum @context1")
	task2 := mustTask(t, l, "(B) foo bar +baz.peng-zap")

	q := Query{{Attr: "context", Op: Eq, Value: "context1"}}
	got, err := q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Equal(t, []*todotxt.Task{task1}, got)

	q = Query{{Attr: "project", Op: Eq, Value: "baz.peng-zap"}}
	got, err = q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Equal(t, []*todotxt.Task{task2}, got)
}

func TestPriorityClauses(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	task1 := mustTask(t, l, "(A) Lorem ipsum @context1")
	task2 := mustTask(t, l, "(B) foo bar +baz.peng-zap")

	// The argument may be an int rank, a letter, or a wrapped letter.
	for _, arg := range []any{1, "A", "(A)", todotxt.Priority(1)} {
		q := Query{{Attr: "priority", Op: Eq, Value: arg}}
		got, err := q.Filter(l.Tasks())
		require.NoError(t, err)
		assert.Equal(t, []*todotxt.Task{task1}, got, "arg %v", arg)
	}

	q := Query{{Attr: "priority", Op: In, Value: []int{1, 2}}}
	got, err := q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Equal(t, []*todotxt.Task{task1, task2}, got)

	// Clauses are a conjunction.
	q = Query{
		{Attr: "priority", Op: Eq, Value: 2},
		{Attr: "context", Op: Eq, Value: "context1"},
	}
	got, err = q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriorityOrderingFollowsUrgency(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	a := mustTask(t, l, "(A) urgent")
	c := mustTask(t, l, "(C) casual")
	none := mustTask(t, l, "unprioritized")

	filter := func(expr string) []*todotxt.Task {
		q, err := Parse(expr)
		require.NoError(t, err)
		got, err := q.Filter(l.Tasks())
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, []*todotxt.Task{a}, filter("priority>B"))
	assert.Equal(t, []*todotxt.Task{a}, filter("priority>=B"))
	assert.Equal(t, []*todotxt.Task{c, none}, filter("priority<B"))
	assert.Equal(t, []*todotxt.Task{none}, filter("priority="))
	assert.Equal(t, []*todotxt.Task{a, c}, filter("priority!="))
}

func TestDateClauses(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	early := mustTask(t, l, "ship it due:2020-12-31")
	late := mustTask(t, l, "polish it due:2021-06-01")
	undated := mustTask(t, l, "someday maybe")

	filter := func(expr string) []*todotxt.Task {
		q, err := Parse(expr)
		require.NoError(t, err)
		got, err := q.Filter(l.Tasks())
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, []*todotxt.Task{early}, filter("due_date<2021-01-01"))
	assert.Equal(t, []*todotxt.Task{early}, filter("due_date=2020-12-31"))
	assert.Equal(t, []*todotxt.Task{late}, filter("due_date>=2021-01-01"))

	// An absent date never matches, whatever the operator.
	assert.NotContains(t, filter("due_date!=1999-01-01"), undated)
	assert.NotContains(t, filter("due_date<2999-01-01"), undated)

	q := Query{{Attr: "due_date", Op: In, Value: []string{"2020-12-31", "2021-06-01"}}}
	got, err := q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Equal(t, []*todotxt.Task{early, late}, got)

	_, err = Query{{Attr: "due_date", Op: Eq, Value: "not-a-date"}}.Filter(l.Tasks())
	assert.ErrorIs(t, err, todotxt.ErrValue)
}

func TestBoolClauses(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	done := mustTask(t, l, "x 2021-01-02 2021-01-01 shipped")
	pending := mustTask(t, l, "in progress")
	overdue := mustTask(t, l, "pay rent due:1999-01-01")
	deferred := mustTask(t, l, "far future t:2999-01-01")

	filter := func(expr string) []*todotxt.Task {
		q, err := Parse(expr)
		require.NoError(t, err)
		got, err := q.Filter(l.Tasks())
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, []*todotxt.Task{done}, filter("is_completed=true"))
	assert.NotContains(t, filter("is_completed=false"), done)
	assert.Contains(t, filter("is_completed=false"), pending)
	assert.Equal(t, []*todotxt.Task{overdue}, filter("is_overdue=true"))
	assert.Equal(t, []*todotxt.Task{deferred}, filter("is_on_threshold=true"))
	assert.Equal(t, []*todotxt.Task{done}, filter("is_completed!=false"))

	_, err := Query{{Attr: "is_completed", Op: Lt, Value: "true"}}.Match(pending)
	assert.ErrorIs(t, err, todotxt.ErrArgument)
	_, err = Query{{Attr: "is_completed", Op: Eq, Value: "maybe"}}.Match(pending)
	assert.ErrorIs(t, err, todotxt.ErrArgument)
}

func TestStringListClauses(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	task := mustTask(t, l, "errands @bank @post +household")

	match := func(c Clause) bool {
		ok, err := Query{c}.Match(task)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, match(Clause{Attr: "contexts", Op: Contains, Value: "bank"}))
	assert.False(t, match(Clause{Attr: "contexts", Op: Contains, Value: "gym"}))
	assert.True(t, match(Clause{Attr: "contexts", Op: Eq, Value: []string{"bank", "post"}}))
	assert.True(t, match(Clause{Attr: "contexts", Op: Ne, Value: []string{"bank"}}))
	assert.True(t, match(Clause{Attr: "projects", Op: Contains, Value: "household"}))

	_, err := Query{{Attr: "contexts", Op: Contains, Value: 42}}.Match(task)
	assert.ErrorIs(t, err, todotxt.ErrArgument)
	_, err = Query{{Attr: "contexts", Op: Lt, Value: "bank"}}.Match(task)
	assert.ErrorIs(t, err, todotxt.ErrArgument)
}

func TestUnknownAttribute(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	task := mustTask(t, l, "a task")

	_, err := Query{{Attr: "frobnicate", Op: Eq, Value: "x"}}.Match(task)
	assert.ErrorIs(t, err, todotxt.ErrArgument)

	q, err := Parse("frobnicate=1")
	require.NoError(t, err, "unknown attributes surface at match time")
	_, err = q.Match(task)
	assert.ErrorIs(t, err, todotxt.ErrArgument)
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	task := mustTask(t, l, "anything at all")

	ok, err := Query{}.Match(task)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterKeepsOrder(t *testing.T) {
	l := todotxt.NewList(nil, todotxt.Strong)
	t1 := mustTask(t, l, "one @keep")
	mustTask(t, l, "two @skip")
	t3 := mustTask(t, l, "three @keep")

	q, err := Parse("contexts~keep")
	require.NoError(t, err)
	got, err := q.Filter(l.Tasks())
	require.NoError(t, err)
	assert.Equal(t, []*todotxt.Task{t1, t3}, got)
}
