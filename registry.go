package todotxt

import "fmt"

// Registry owns a set of token kinds and classifies words against them.
// Registration order is classification order. A Registry is not safe for
// concurrent registration; build it up front, then share it freely for
// parsing.
//
// Two kinds declaring the identical pattern string are both ambiguous: a
// word matching that pattern cannot be attributed to either by grammar
// alone, so classification passes both over. The builtin completion and
// creation dates rely on this; they are told apart by position instead.
type Registry struct {
	kinds        []*TokenKind
	byName       map[string]*TokenKind
	bySlot       map[int]*TokenKind
	patternCount map[string]int
}

// NewRegistry returns a registry with all builtin kinds registered.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, k := range builtinKinds() {
		if err := r.Register(k); err != nil {
			// The builtin grammar is statically correct.
			panic(err)
		}
	}
	return r
}

// NewEmptyRegistry returns a registry with no kinds at all.
func NewEmptyRegistry() *Registry {
	return &Registry{
		byName:       make(map[string]*TokenKind),
		bySlot:       make(map[int]*TokenKind),
		patternCount: make(map[string]int),
	}
}

// Register adds a kind to the registry. It fails when the kind's name is
// empty or taken, its pattern does not compile to a single-capture grammar,
// it lacks a parser, or it claims a fixed slot another kind already holds.
func (r *Registry) Register(k *TokenKind) error {
	if k.Name == "" {
		return fmt.Errorf("%w: kind needs a name", ErrGrammar)
	}
	if _, dup := r.byName[k.Name]; dup {
		return fmt.Errorf("%w: kind %q already registered", ErrGrammar, k.Name)
	}
	if k.Parse == nil {
		return fmt.Errorf("%w: kind %q has no parser", ErrGrammar, k.Name)
	}
	if k.Slot < 0 || k.Slot > SlotCreatedDate {
		return fmt.Errorf("%w: kind %q: slot %d out of range", ErrGrammar, k.Name, k.Slot)
	}
	if k.Slot != 0 {
		if held, taken := r.bySlot[k.Slot]; taken {
			return fmt.Errorf("%w: slot %d already held by %q", ErrGrammar, k.Slot, held.Name)
		}
		if !k.Singleton {
			return fmt.Errorf("%w: kind %q: fixed-slot kinds are singletons", ErrGrammar, k.Name)
		}
	}
	if err := k.compile(); err != nil {
		return err
	}

	r.kinds = append(r.kinds, k)
	r.byName[k.Name] = k
	if k.Slot != 0 {
		r.bySlot[k.Slot] = k
	}
	r.patternCount[k.Pattern]++
	return nil
}

// Kind looks a kind up by name.
func (r *Registry) Kind(name string) (*TokenKind, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []*TokenKind {
	out := make([]*TokenKind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// slot returns the kind holding a fixed slot, if any.
func (r *Registry) slot(n int) (*TokenKind, bool) {
	k, ok := r.bySlot[n]
	return k, ok
}

// ambiguous reports whether the kind's pattern is shared with another kind.
func (r *Registry) ambiguous(k *TokenKind) bool {
	return r.patternCount[k.Pattern] > 1
}

// classify turns one word into a token. Kinds are tried in registration
// order; ambiguous kinds never match, and fixed-slot kinds only match when
// the caller asks for them (token addition does, body parsing does not).
// A word matching a grammar whose payload fails validation is an error,
// never a silent downgrade; a word matching nothing is plain text.
func (r *Registry) classify(word string, fixedSlots bool) (Token, error) {
	for _, k := range r.kinds {
		if k == KindText || r.ambiguous(k) {
			continue
		}
		if k.Slot != 0 && !fixedSlots {
			continue
		}
		tok, matched, err := k.ParseWord(word)
		if err != nil {
			return Token{}, err
		}
		if matched {
			return tok, nil
		}
	}
	return KindText.New(Text(word)), nil
}
