package todotxt

import "errors"

// Sentinel errors returned by the engine. Callers match them with errors.Is;
// wrapped messages carry the offending input.
var (
	// ErrGrammar reports a token kind that cannot be registered: bad
	// pattern, reserved slot, or a name already taken.
	ErrGrammar = errors.New("grammar config")

	// ErrValue reports a payload a kind's parser rejected, such as an
	// impossible calendar date or a priority outside A-Z.
	ErrValue = errors.New("invalid value")

	// ErrArgument reports an unsupported variant passed to Add or Remove,
	// or a task enrolled into a second list.
	ErrArgument = errors.New("invalid argument")

	// ErrParse reports a line that could not be turned into a task.
	ErrParse = errors.New("parse")
)
