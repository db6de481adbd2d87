package todotxt

import (
	"fmt"
	"strings"
)

// Builtin token kinds. NewRegistry registers all of them; callers composing
// their own grammar with NewEmptyRegistry may register any subset plus their
// own kinds.
//
// KindCompletionDate and KindCreatedDate share one pattern on purpose: a bare
// date is positional, so neither can claim a body word and both resolve only
// through the fixed-slot scan.
var (
	KindCompletionDate = &TokenKind{
		Name:         "completion_date",
		Pattern:      `^(\d{4}-\d{2}-\d{2})$`,
		Slot:         SlotCompletionDate,
		Singleton:    true,
		Indexed:      true,
		Parse:        parseDateValue,
		Template:     "%s",
		HTMLTemplate: `<span class="completeddate">%s</span>`,
	}

	KindPriority = &TokenKind{
		Name:      "priority",
		Pattern:   `^\(([A-Z])\)$`,
		Slot:      SlotPriority,
		Singleton: true,
		Indexed:   true,
		Parse: func(raw string) (Value, error) {
			return ParsePriority(raw)
		},
		Render: func(v Value) string {
			if s := v.String(); s != "" {
				return "(" + s + ")"
			}
			return ""
		},
		RenderHTML: func(v Value) string {
			if s := v.String(); s != "" {
				return `<span class="priority">` + s + `</span>`
			}
			return ""
		},
	}

	KindCreatedDate = &TokenKind{
		Name:         "created_date",
		Pattern:      `^(\d{4}-\d{2}-\d{2})$`,
		Slot:         SlotCreatedDate,
		Singleton:    true,
		Indexed:      true,
		Parse:        parseDateValue,
		Template:     "%s",
		HTMLTemplate: `<span class="createddate">%s</span>`,
	}

	KindContext = &TokenKind{
		Name:         "context",
		Pattern:      `^@(\S+)$`,
		Indexed:      true,
		Parse:        parseWordValue,
		Template:     "@%s",
		HTMLTemplate: `<span class="context">@%s</span>`,
	}

	KindProject = &TokenKind{
		Name:         "project",
		Pattern:      `^\+(\S+)$`,
		Indexed:      true,
		Parse:        parseWordValue,
		Template:     "+%s",
		HTMLTemplate: `<span class="project">+%s</span>`,
	}

	KindDueDate = &TokenKind{
		Name:         "due_date",
		Pattern:      `^due:(\d{4}-\d{2}-\d{2})$`,
		Singleton:    true,
		Indexed:      true,
		Parse:        parseDateValue,
		Template:     "due:%s",
		HTMLTemplate: `<span class="duedate">due:%s</span>`,
	}

	KindThresholdDate = &TokenKind{
		Name:         "threshold_date",
		Pattern:      `^t:(\d{4}-\d{2}-\d{2})$`,
		Singleton:    true,
		Indexed:      true,
		Parse:        parseDateValue,
		Template:     "t:%s",
		HTMLTemplate: `<span class="thresholddate">t:%s</span>`,
	}

	// KindURL recognizes http, https and ftp URLs with a hostname, IPv4 or
	// IPv6 address, optional userinfo, port and path, plus file:/// paths.
	KindURL = &TokenKind{
		Name: "url",
		Pattern: `(?i)^(` +
			`(?:https?|ftp)://` +
			`(?:\S+(?::\S+)?@)?` +
			`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])\.?)+` +
			`|(?:\d{1,3}\.){3}\d{1,3}` +
			`|\[?[A-F0-9]*:[A-F0-9:]+\]?)` +
			`(?::\d{1,5})?` +
			`(?:/?|[/?]\S+)` +
			`|file:///.*` +
			`)$`,
		Parse:        parseWordValue,
		Template:     "%s",
		HTMLTemplate: `<a href="%[1]s">%[1]s</a>`,
	}

	KindText = &TokenKind{
		Name:    "text",
		Pattern: `^(.+)$`,
		Parse: func(raw string) (Value, error) {
			return Text(raw), nil
		},
		Template:     "%s",
		HTMLTemplate: "%s",
	}
)

// Fixed task slots claimed by the builtin kinds.
const (
	SlotCompletionDate = 1
	SlotPriority       = 2
	SlotCreatedDate    = 3
)

func parseDateValue(raw string) (Value, error) {
	return ParseDate(raw)
}

func parseWordValue(raw string) (Value, error) {
	if raw == "" || strings.ContainsAny(raw, " \t") {
		return nil, fmt.Errorf("%w: %q is not a single word", ErrValue, raw)
	}
	return Text(raw), nil
}

func builtinKinds() []*TokenKind {
	return []*TokenKind{
		KindCompletionDate,
		KindPriority,
		KindCreatedDate,
		KindContext,
		KindProject,
		KindDueDate,
		KindThresholdDate,
		KindURL,
		KindText,
	}
}
