package reader

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files. Markup is dropped so
// only prose reaches the reader; code blocks are skipped.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	words, _, err := parseMarkdownFile(filename)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

// TOC extracts the table of contents from a Markdown file's headings.
func (f *MarkdownFormat) TOC(filename string) ([]TOCEntry, error) {
	words, marks, err := parseMarkdownFile(filename)
	if err != nil {
		return nil, err
	}
	return buildTOC(marks, words), nil
}

// ExtractChapters extracts text with chapter boundaries at headings.
func (f *MarkdownFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	words, marks, err := parseMarkdownFile(filename)
	if err != nil {
		return nil, nil, err
	}
	return buildChapters(marks, len(words)), words, nil
}

func parseMarkdownFile(filename string) ([]string, []headingMark, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	words, marks := parseMarkdown(source)
	return words, marks, nil
}

// parseMarkdown walks the goldmark AST collecting words and the position of
// every heading in the word stream.
func parseMarkdown(source []byte) ([]string, []headingMark) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	words := []string{}
	var marks []headingMark
	var buf strings.Builder
	flush := func() {
		words = append(words, Tokenize(buf.String())...)
		buf.Reset()
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n.Type() == ast.TypeBlock {
			flush()
		}
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Heading:
			marks = append(marks, headingMark{
				title:     strings.Join(Tokenize(inlineText(n, source)), " "),
				level:     n.Level - 1,
				wordIndex: len(words),
			})
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(n.Value)
		case *ast.AutoLink:
			buf.Write(n.Label(source))
		}
		return ast.WalkContinue, nil
	})
	flush()

	return words, marks
}

// inlineText concatenates the text below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
