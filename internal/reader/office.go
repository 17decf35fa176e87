package reader

import (
	"fmt"

	"github.com/tsawler/tabula"
)

// OfficeFormat implements Format for word-processor documents.
type OfficeFormat struct{}

func init() {
	Register(&OfficeFormat{})
}

func (f *OfficeFormat) Name() string         { return "Office" }
func (f *OfficeFormat) Extensions() []string { return []string{".docx", ".odt"} }

func (f *OfficeFormat) Extract(filename string) (string, error) {
	text, _, err := f.extractWarn(filename)
	return text, err
}

func (f *OfficeFormat) extractWarn(filename string) (string, []string, error) {
	text, warnings, err := tabula.Open(filename).Text()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document: %w", err)
	}
	return text, warningMessages(warnings), nil
}
