// Package render turns tasks into HTML fragments. Token markup comes from
// each token kind; this package wraps a task's tokens in a configurable
// element and derives CSS classes from the task's state, so a stylesheet can
// color overdue or completed tasks without inspecting their text.
package render

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dori/todotxt"
)

// HTML renders tasks wrapped in an element with state-derived classes.
// The zero value renders bare elements without any classes; NewHTML returns
// the usual defaults.
type HTML struct {
	// Element is the tag wrapped around each task, e.g. "div" or "li".
	Element string `toml:"element"`

	// Class is always included in the wrapper's class attribute when set.
	Class string `toml:"class"`

	// IncludePriorityClass adds a class like "priority-a" for prioritized
	// tasks.
	IncludePriorityClass bool `toml:"include_priority_class"`

	// PropertyClasses maps task attribute names (see todotxt.Task.Attr) to a
	// class added when the attribute is set: a true boolean, a present date,
	// a priority, a non-empty list.
	PropertyClasses map[string]string `toml:"property_classes"`

	// ContextClasses maps a context value to a class added when the task
	// carries that context.
	ContextClasses map[string]string `toml:"context_classes"`

	// ProjectClasses is ContextClasses for projects.
	ProjectClasses map[string]string `toml:"project_classes"`
}

// NewHTML returns a renderer producing
//
//	<div class="task priority-a completed threshold overdue ...">...</div>
//
// with the state classes present only when they apply.
func NewHTML() *HTML {
	return &HTML{
		Element:              "div",
		Class:                "task",
		IncludePriorityClass: true,
		PropertyClasses: map[string]string{
			"is_completed":    "completed",
			"is_on_threshold": "threshold",
			"is_overdue":      "overdue",
		},
		ContextClasses: map[string]string{},
		ProjectClasses: map[string]string{},
	}
}

// LoadHTML reads a TOML file and applies it over the defaults, so a config
// only needs the keys it changes.
func LoadHTML(path string) (*HTML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read render config: %w", err)
	}
	h := NewHTML()
	if err := toml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("failed to parse render config %s: %w", path, err)
	}
	return h, nil
}

// Task renders one task: the wrapper element, its classes, then the task's
// token markup.
func (h *HTML) Task(t *todotxt.Task) string {
	element := h.Element
	if element == "" {
		element = "div"
	}
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(element)
	b.WriteString(h.classAttr(t))
	b.WriteByte('>')
	b.WriteString(t.HTML())
	b.WriteString("</")
	b.WriteString(element)
	b.WriteByte('>')
	return b.String()
}

// List renders every task in the list, one wrapper per line, in list order.
func (h *HTML) List(l *todotxt.List) string {
	tasks := l.Tasks()
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = h.Task(t)
	}
	return strings.Join(lines, "\n")
}

func (h *HTML) classAttr(t *todotxt.Task) string {
	var classes []string
	if h.Class != "" {
		classes = append(classes, h.Class)
	}
	if h.IncludePriorityClass {
		if p := t.Priority(); !p.IsZero() {
			classes = append(classes, "priority-"+strings.ToLower(p.String()))
		}
	}
	for _, attr := range sortedKeys(h.PropertyClasses) {
		if value, ok := t.Attr(attr); ok && attrSet(value) {
			classes = append(classes, h.PropertyClasses[attr])
		}
	}
	for _, context := range sortedKeys(h.ContextClasses) {
		if slices.Contains(t.Contexts(), context) {
			classes = append(classes, h.ContextClasses[context])
		}
	}
	for _, project := range sortedKeys(h.ProjectClasses) {
		if slices.Contains(t.Projects(), project) {
			classes = append(classes, h.ProjectClasses[project])
		}
	}
	if len(classes) == 0 {
		return ""
	}
	return ` class="` + strings.Join(classes, " ") + `"`
}

// attrSet is the truthiness of an attribute value: set dates, any priority,
// true booleans and non-empty lists count.
func attrSet(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case todotxt.Date:
		return !v.IsZero()
	case todotxt.Priority:
		return !v.IsZero()
	case []string:
		return len(v) > 0
	default:
		return false
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
