// Package query filters tasks by named attributes, the way a todo.txt CLI
// exposes search: clauses like priority<=B, contexts~work or is_overdue=true
// are ANDed together and evaluated against each task's attribute surface.
package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dori/todotxt"
)

// Op compares an attribute value against a clause argument. Ordering ops on
// priorities follow urgency: Gt means closer to A.
type Op string

const (
	Eq       Op = "="
	Ne       Op = "!="
	Lt       Op = "<"
	Le       Op = "<="
	Gt       Op = ">"
	Ge       Op = ">="
	Contains Op = "~"
	In       Op = "in"
)

// Clause is one attribute test. Attr names the task attribute
// (todotxt.Task.Attr); a singular name resolves to its plural with the
// Contains op, so {Attr: "context", Op: Eq, Value: "work"} means
// "work" among the task's contexts.
type Clause struct {
	Attr  string
	Op    Op
	Value any
}

// Query is a conjunction of clauses.
type Query []Clause

// Parse reads a whitespace-separated clause list, e.g.
//
//	priority<=B due_date<2021-01-01 contexts~work is_completed=false
//
// Recognized operators, longest first: != <= >= = < > ~.
func Parse(expr string) (Query, error) {
	var q Query
	for _, field := range strings.Fields(expr) {
		c, err := parseClause(field)
		if err != nil {
			return nil, err
		}
		q = append(q, c)
	}
	return q, nil
}

var textualOps = []Op{Ne, Le, Ge, Eq, Lt, Gt, Contains}

func parseClause(field string) (Clause, error) {
	for _, op := range textualOps {
		i := strings.Index(field, string(op))
		if i <= 0 {
			continue
		}
		// "<" would also split "<=" clauses; demand the full operator.
		if (op == Lt || op == Gt || op == Eq) && i+1 < len(field) && field[i+1] == '=' {
			continue
		}
		return Clause{
			Attr:  field[:i],
			Op:    op,
			Value: field[i+len(op):],
		}, nil
	}
	return Clause{}, fmt.Errorf("%w: no operator in clause %q", todotxt.ErrArgument, field)
}

// Match reports whether the task satisfies every clause. Unknown attributes
// are an error; an absent attribute value (a task without the date) simply
// never matches.
func (q Query) Match(t *todotxt.Task) (bool, error) {
	for _, c := range q {
		ok, err := c.match(t)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Filter returns the tasks matching the query, in input order.
func (q Query) Filter(tasks []*todotxt.Task) ([]*todotxt.Task, error) {
	var out []*todotxt.Task
	for _, t := range tasks {
		ok, err := q.Match(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c Clause) match(t *todotxt.Task) (bool, error) {
	op := c.Op
	value, ok := t.Attr(c.Attr)
	if !ok {
		// The singular of a plural attribute tests membership instead.
		if plural, found := t.Attr(c.Attr + "s"); found {
			value = plural
			op = Contains
		} else {
			return false, fmt.Errorf("%w: task has no attribute %q", todotxt.ErrArgument, c.Attr)
		}
	}

	switch v := value.(type) {
	case todotxt.Priority:
		return matchPriority(v, op, c.Value)
	case todotxt.Date:
		if v.IsZero() {
			return false, nil
		}
		return matchDate(v, op, c.Value)
	case bool:
		return matchBool(v, op, c.Value)
	case []string:
		return matchStrings(v, op, c.Value)
	default:
		return false, fmt.Errorf("%w: attribute %q is not comparable", todotxt.ErrArgument, c.Attr)
	}
}

func matchPriority(v todotxt.Priority, op Op, arg any) (bool, error) {
	if op == In {
		return matchIn(arg, func(x any) (bool, error) { return matchPriority(v, Eq, x) })
	}
	p, err := toPriority(arg)
	if err != nil {
		return false, err
	}
	// Compare orders by urgency, so Gt means nearer to A.
	return ordered(op, -v.Compare(p))
}

func matchDate(v todotxt.Date, op Op, arg any) (bool, error) {
	if op == In {
		return matchIn(arg, func(x any) (bool, error) { return matchDate(v, Eq, x) })
	}
	d, err := toDate(arg)
	if err != nil {
		return false, err
	}
	return ordered(op, v.Compare(d))
}

func matchBool(v bool, op Op, arg any) (bool, error) {
	b, err := toBool(arg)
	if err != nil {
		return false, err
	}
	switch op {
	case Eq:
		return v == b, nil
	case Ne:
		return v != b, nil
	default:
		return false, fmt.Errorf("%w: operator %q does not apply to booleans", todotxt.ErrArgument, op)
	}
}

func matchStrings(v []string, op Op, arg any) (bool, error) {
	switch op {
	case Contains:
		s, ok := arg.(string)
		if !ok {
			if str, isStringer := arg.(fmt.Stringer); isStringer {
				s = str.String()
			} else {
				return false, fmt.Errorf("%w: need a string to test membership, got %T", todotxt.ErrArgument, arg)
			}
		}
		return slices.Contains(v, s), nil
	case Eq, Ne:
		other, ok := arg.([]string)
		if !ok {
			return false, fmt.Errorf("%w: need a string list to compare against, got %T", todotxt.ErrArgument, arg)
		}
		eq := slices.Equal(v, other)
		return eq == (op == Eq), nil
	default:
		return false, fmt.Errorf("%w: operator %q does not apply to string lists", todotxt.ErrArgument, op)
	}
}

func matchIn(arg any, eq func(any) (bool, error)) (bool, error) {
	var items []any
	switch coll := arg.(type) {
	case []any:
		items = coll
	case []string:
		for _, s := range coll {
			items = append(items, s)
		}
	case []int:
		for _, n := range coll {
			items = append(items, n)
		}
	default:
		return false, fmt.Errorf("%w: operator \"in\" needs a collection, got %T", todotxt.ErrArgument, arg)
	}
	for _, item := range items {
		ok, err := eq(item)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ordered maps a three-way comparison onto an ordering operator.
func ordered(op Op, c int) (bool, error) {
	switch op {
	case Eq:
		return c == 0, nil
	case Ne:
		return c != 0, nil
	case Lt:
		return c < 0, nil
	case Le:
		return c <= 0, nil
	case Gt:
		return c > 0, nil
	case Ge:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %q", todotxt.ErrArgument, op)
	}
}

func toPriority(arg any) (todotxt.Priority, error) {
	switch a := arg.(type) {
	case todotxt.Priority:
		return a, nil
	case int:
		if a < 0 || a > 26 {
			return 0, fmt.Errorf("%w: priority %d out of range", todotxt.ErrArgument, a)
		}
		return todotxt.Priority(a), nil
	case string:
		s := strings.TrimSuffix(strings.TrimPrefix(a, "("), ")")
		return todotxt.ParsePriority(s)
	default:
		return 0, fmt.Errorf("%w: cannot read a priority from %T", todotxt.ErrArgument, arg)
	}
}

func toDate(arg any) (todotxt.Date, error) {
	switch a := arg.(type) {
	case todotxt.Date:
		return a, nil
	case string:
		return todotxt.ParseDate(a)
	default:
		return todotxt.Date{}, fmt.Errorf("%w: cannot read a date from %T", todotxt.ErrArgument, arg)
	}
}

func toBool(arg any) (bool, error) {
	switch a := arg.(type) {
	case bool:
		return a, nil
	case string:
		b, err := strconv.ParseBool(a)
		if err != nil {
			return false, fmt.Errorf("%w: cannot read a boolean from %q", todotxt.ErrArgument, a)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: cannot read a boolean from %T", todotxt.ErrArgument, arg)
	}
}
