package reader

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
)

// HTMLFormat implements Format for saved web pages. Readability isolates
// the article body so navigation and boilerplate are not read aloud; pages it
// cannot make sense of fall back to all visible text.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent, nil
	}
	return extractTextFromHTML(string(data)), nil
}
