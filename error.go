package ecmare

import "fmt"

// Error is returned by the Compile functions. Err is an *nfa.Error for
// syntax problems or a *meta.ConfigError for an invalid configuration.
type Error struct {
	Expr string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "ecmare: " + e.Err.Error()
}

// Unwrap returns the underlying error, so errors.Is(err, nfa.ErrorParen)
// matches by kind.
func (e *Error) Unwrap() error {
	return e.Err
}

// FlagError reports an unknown letter passed to ParseFlags.
type FlagError struct {
	Flags string
	Flag  rune
}

// Error implements the error interface.
func (e *FlagError) Error() string {
	return fmt.Sprintf("ecmare: invalid flag %q in %q", e.Flag, e.Flags)
}
