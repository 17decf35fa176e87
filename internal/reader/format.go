package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Lookup returns the registered format for filename's extension, or nil when
// the file should be read as plain text.
func Lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// warner is implemented by formats whose parsers report non-fatal problems
// next to the extracted text.
type warner interface {
	extractWarn(filename string) (string, []string, error)
}

// chapterWarner is the warning-reporting form of ChapterExtractor.
type chapterWarner interface {
	extractChaptersWarn(filename string) ([]Chapter, []string, []string, error)
}

// ExtractText extracts text from a file, using a registered format or plain text fallback.
func ExtractText(filename string) (string, error) {
	text, _, err := extractText(filename)
	return text, err
}

func extractText(filename string) (string, []string, error) {
	f := Lookup(filename)
	if w, ok := f.(warner); ok {
		return w.extractWarn(filename)
	}
	if f != nil {
		text, err := f.Extract(filename)
		return text, nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	return string(data), nil, nil
}

func extractChapters(ce ChapterExtractor, filename string) ([]Chapter, []string, []string, error) {
	if cw, ok := ce.(chapterWarner); ok {
		return cw.extractChaptersWarn(filename)
	}
	chapters, words, err := ce.ExtractChapters(filename)
	return chapters, words, nil, err
}

func logWarnings(log *zap.Logger, filename string, warnings []string) {
	for _, w := range warnings {
		log.Debug("extraction warning", zap.String("path", filename), zap.String("warning", w))
	}
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// Extensions lists every registered file extension, lowercase with the dot.
func Extensions() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Extensions()...)
	}
	return out
}

// Files opens documents from the local filesystem.
type Files struct {
	Logger *zap.Logger
}

// Open is Files{}.Open.
func Open(filename string) (*Document, error) {
	return Files{}.Open(filename)
}

// Open extracts filename into a Document. Chapter-aware formats contribute
// chapters and a TOC; when that path fails the plain extraction is used.
// Every failure is a *DocumentLoadError.
func (fs Files) Open(filename string) (*Document, error) {
	log := fs.Logger
	if log == nil {
		log = zap.NewNop()
	}

	format := "text"
	f := Lookup(filename)
	if f != nil {
		format = f.Name()
	}
	fail := func(err error) (*Document, error) {
		log.Warn("document load failed", zap.String("path", filename), zap.String("format", format), zap.Error(err))
		return nil, &DocumentLoadError{Path: filename, Format: format, Err: err}
	}

	if _, err := os.Stat(filename); err != nil {
		return fail(err)
	}

	doc := &Document{Path: filename, Format: format}

	if ce, ok := f.(ChapterExtractor); ok {
		chapters, words, warnings, err := extractChapters(ce, filename)
		logWarnings(log, filename, warnings)
		if err != nil {
			log.Debug("chapter extraction failed, using plain extraction", zap.String("path", filename), zap.Error(err))
		} else if len(words) > 0 {
			doc.Chapters = chapters
			doc.Words = words
			doc.Text = strings.Join(words, " ")
		}
	}

	if doc.Words == nil {
		text, warnings, err := extractText(filename)
		logWarnings(log, filename, warnings)
		if err != nil {
			return fail(err)
		}
		doc.Text = text
		doc.Words = Tokenize(text)
	}

	if len(doc.Words) == 0 {
		return fail(ErrNoText)
	}

	if tp, ok := f.(TOCProvider); ok {
		toc, err := tp.TOC(filename)
		if err != nil {
			log.Debug("toc extraction failed", zap.String("path", filename), zap.Error(err))
		} else {
			doc.TOC = toc
		}
	} else if len(doc.Chapters) > 1 {
		doc.TOC = chapterTOC(doc.Chapters, doc.Words)
	}

	log.Info("document loaded",
		zap.String("path", filename),
		zap.String("format", format),
		zap.Int("words", len(doc.Words)),
		zap.Int("chapters", len(doc.Chapters)),
		zap.Int("toc", len(doc.TOC)))
	return doc, nil
}

// IsLoadError reports whether err is (or wraps) a *DocumentLoadError.
func IsLoadError(err error) bool {
	var le *DocumentLoadError
	return errors.As(err, &le)
}
