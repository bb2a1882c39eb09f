package syntax

import "errors"

var (
	errNoStructuralParser  = errors.New("structural parser unavailable for language")
	errUnsupportedLanguage = errors.New("unsupported language")
)
