package reader

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Extract(filename string) (string, error) {
	docs, err := readSpine(filename)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, strings.Join(d.words, " "))
	}
	return strings.Join(parts, " "), nil
}

// spineDoc is one spine item of a book reduced to its words.
type spineDoc struct {
	href  string
	words []string
}

// withBook opens filename and hands its first rootfile to fn.
func withBook(filename string, fn func(*epub.Rootfile) error) error {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return fmt.Errorf("no rootfiles found in epub")
	}
	return fn(rc.Rootfiles[0])
}

// readSpine returns every readable spine item in reading order. Items that
// fail to open or hold no text are skipped.
func readSpine(filename string) ([]spineDoc, error) {
	var docs []spineDoc
	err := withBook(filename, func(book *epub.Rootfile) error {
		docs = spineDocs(book)
		return nil
	})
	return docs, err
}

func spineDocs(book *epub.Rootfile) []spineDoc {
	var docs []spineDoc
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		words := Tokenize(extractTextFromHTML(string(data)))
		if len(words) == 0 {
			continue
		}
		docs = append(docs, spineDoc{href: ref.Item.HREF, words: words})
	}
	return docs
}

// ExtractChapters extracts text with one chapter per spine item, titled from
// the NCX when it names the item.
func (f *EPUBFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	var (
		allWords []string
		chapters []Chapter
	)
	err := withBook(filename, func(book *epub.Rootfile) error {
		titles := hrefTitles(book)
		for i, d := range spineDocs(book) {
			title := fmt.Sprintf("Section %d", i+1)
			if t, ok := titles[d.href]; ok {
				title = t
			} else if t, ok := titles[path.Base(d.href)]; ok {
				title = t
			}
			chapters = append(chapters, Chapter{
				Title:     title,
				WordStart: len(allWords),
				WordEnd:   len(allWords) + len(d.words) - 1,
			})
			allWords = append(allWords, d.words...)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return chapters, allWords, nil
}

func extractTextFromHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out.String()
}
