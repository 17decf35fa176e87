package reader

import (
	"errors"
	"fmt"
)

// ErrNoText is returned when a document opens fine but yields no words.
var ErrNoText = errors.New("no extractable text")

// DocumentLoadError reports a document that could not be turned into words:
// a missing or unreadable file, a corrupt PDF, or a file with no text.
type DocumentLoadError struct {
	Path   string
	Format string
	Err    error
}

func (e *DocumentLoadError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("load %s document %q: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("load document %q: %v", e.Path, e.Err)
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }
