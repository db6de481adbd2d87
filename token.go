package todotxt

// Token is one typed element of a task line: a kind paired with a value.
// Tokens are plain values; replacing a task's priority or due date swaps the
// token, it never edits one in place. The zero Token marks an absent slot.
type Token struct {
	Kind  *TokenKind
	Value Value
}

// IsZero reports whether the token is absent.
func (t Token) IsZero() bool { return t.Kind == nil }

// String renders the token in its todo.txt form. The empty priority renders
// as an empty string so it vanishes from the task line.
func (t Token) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Kind.renderText(t.Value)
}

// HTML renders the token through its kind's HTML template.
func (t Token) HTML() string {
	if t.IsZero() {
		return ""
	}
	return t.Kind.renderHTML(t.Value)
}

// Equal reports whether both tokens are of the same kind and render to the
// same text.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.IsZero() {
		return true
	}
	return t.String() == o.String()
}
