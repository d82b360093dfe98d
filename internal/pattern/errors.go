package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax matches every *SyntaxError.
	ErrSyntax = errors.New("pattern syntax error")
	// ErrMissingGroupTemplate is returned when a pattern uses a multiplicity
	// ("x5") but the caller supplied no group template.
	ErrMissingGroupTemplate = errors.New("missing group template")
)

// SyntaxError describes malformed pattern text. Offset is a byte offset into
// Pattern; Near is the text at that offset.
type SyntaxError struct {
	Pattern string
	Offset  int
	Near    string
	Reason  string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s: %s at offset %d in %q", ErrSyntax, e.Reason, e.Offset, e.Pattern)
	}
	return fmt.Sprintf("%s: %s at offset %d (near %q) in %q", ErrSyntax, e.Reason, e.Offset, e.Near, e.Pattern)
}

// Is lets errors.Is(err, ErrSyntax) match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
