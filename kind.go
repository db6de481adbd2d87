package todotxt

import (
	"fmt"
	"regexp"
	"sync"
)

// TokenKind declares one token grammar: how a word is recognized, where the
// token lives in a task, whether it repeats, and how it renders. A kind is
// inert until registered with a Registry.
//
// Pattern must be anchored and carry exactly one capture group; the group's
// text is handed to Parse. Slot places the kind at a fixed task position
// (1 completion date, 2 priority, 3 creation date); slot 0 kinds float among
// the body tokens. Singleton kinds occur at most once per task. Indexed
// kinds participate in the owning list's token index.
type TokenKind struct {
	Name      string
	Pattern   string
	Slot      int
	Singleton bool
	Indexed   bool

	// Parse converts the captured text into the kind's value type.
	Parse func(raw string) (Value, error)

	// Template and HTMLTemplate are fmt patterns applied to the value's
	// string form, e.g. "due:%s" and `<span class="duedate">due:%s</span>`.
	// Render and RenderHTML, when set, take precedence; the priority kind
	// uses them to render its empty value as nothing at all.
	Template     string
	HTMLTemplate string
	Render       func(v Value) string
	RenderHTML   func(v Value) string

	compileOnce sync.Once
	re          *regexp.Regexp
	compileErr  error
}

// compile builds the kind's matcher once and validates the capture contract.
func (k *TokenKind) compile() error {
	k.compileOnce.Do(func() {
		re, err := regexp.Compile(k.Pattern)
		if err != nil {
			k.compileErr = fmt.Errorf("%w: kind %q: %v", ErrGrammar, k.Name, err)
			return
		}
		if re.NumSubexp() != 1 {
			k.compileErr = fmt.Errorf("%w: kind %q: pattern needs exactly one capture group", ErrGrammar, k.Name)
			return
		}
		k.re = re
	})
	return k.compileErr
}

// Match tests a single word against the kind's grammar and returns the
// captured value text.
func (k *TokenKind) Match(word string) (string, bool) {
	if k.compile() != nil {
		return "", false
	}
	m := k.re.FindStringSubmatch(word)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseWord recognizes a word and constructs a token from it. It reports
// false when the word does not match the grammar; a matching word with a
// payload the kind rejects returns an error.
func (k *TokenKind) ParseWord(word string) (Token, bool, error) {
	raw, ok := k.Match(word)
	if !ok {
		return Token{}, false, nil
	}
	v, err := k.Parse(raw)
	if err != nil {
		return Token{}, true, fmt.Errorf("failed to parse %q: %w", word, err)
	}
	return Token{Kind: k, Value: v}, true, nil
}

// New constructs a token of this kind around an already-typed value. It
// does not check that the value suits the kind; Task.Add rejects a token
// whose rendered word the kind's own grammar would not recognize.
func (k *TokenKind) New(v Value) Token {
	return Token{Kind: k, Value: v}
}

func (k *TokenKind) String() string { return k.Name }

func (k *TokenKind) renderText(v Value) string {
	if k.Render != nil {
		return k.Render(v)
	}
	t := k.Template
	if t == "" {
		t = "%s"
	}
	return fmt.Sprintf(t, v.String())
}

func (k *TokenKind) renderHTML(v Value) string {
	if k.RenderHTML != nil {
		return k.RenderHTML(v)
	}
	t := k.HTMLTemplate
	if t == "" {
		t = "%s"
	}
	return fmt.Sprintf(t, v.String())
}
