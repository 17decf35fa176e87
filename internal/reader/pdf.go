package reader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/layout"
	pdfreader "github.com/tsawler/tabula/reader"
	"golang.org/x/text/unicode/norm"
)

// PDFFormat implements Format for PDF files.
//
// Text comes from tabula, which understands reading order and can drop
// running headers and footers. Files tabula rejects are retried with the
// simpler ledongthuc/pdf content-stream reader before giving up.
type PDFFormat struct {
	// KeepHeadersFooters disables tabula's running header/footer filter.
	KeepHeadersFooters bool
}

var pdfFormat = &PDFFormat{}

func init() {
	Register(pdfFormat)
}

// SetPDFHeaderFooterFilter toggles header/footer removal for the registered
// PDF format.
func SetPDFHeaderFooterFilter(on bool) {
	pdfFormat.KeepHeadersFooters = !on
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) Extract(filename string) (string, error) {
	text, _, err := f.extractWarn(filename)
	return text, err
}

func (f *PDFFormat) extractWarn(filename string) (string, []string, error) {
	res, err := f.parse(filename, false)
	return res.text, res.warnings, err
}

// pdfText is the outcome of one pass over a PDF.
type pdfText struct {
	text     string
	headings []layout.Heading
	warnings []string
}

// parse reads filename once. Text and, when wanted, headings come from the
// same open reader. Heading failures and the switch to the plain reader are
// reported as warnings rather than errors.
func (f *PDFFormat) parse(filename string, wantHeadings bool) (pdfText, error) {
	var res pdfText
	_, err := recovered(func() (string, error) {
		r, err := pdfreader.Open(filename)
		if err != nil {
			return "", err
		}
		defer r.Close()

		text, warnings, err := f.extractor(r).Text()
		if err != nil {
			return "", err
		}
		res.text = text
		res.warnings = warningMessages(warnings)

		if wantHeadings {
			_, herr := recovered(func() (string, error) {
				var err error
				res.headings, err = f.extractor(r).Headings()
				return "", err
			})
			if herr != nil {
				res.headings = nil
				res.warnings = append(res.warnings, "heading detection failed: "+herr.Error())
			}
		}
		return "", nil
	})

	if err != nil {
		fallback, ferr := recovered(func() (string, error) { return extractPlainPDF(filename) })
		if ferr != nil {
			return pdfText{}, fmt.Errorf("failed to read pdf: %w", err)
		}
		res = pdfText{
			text:     fallback,
			warnings: []string{"tabula failed, used plain text reader: " + err.Error()},
		}
	}

	res.text = normalizeText(res.text)
	return res, nil
}

func (f *PDFFormat) extractor(r *pdfreader.Reader) *tabula.Extractor {
	ex := tabula.FromReader(r)
	if !f.KeepHeadersFooters {
		ex = ex.ExcludeHeadersAndFooters()
	}
	return ex
}

func warningMessages(warnings []tabula.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Message)
	}
	return out
}

// normalizeText folds ligatures and compatibility forms (fi, full-width
// letters) into the plain characters a reader expects.
func normalizeText(s string) string {
	return norm.NFKC.String(s)
}

// recovered runs fn, turning a parser panic on malformed input into an error.
func recovered(fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return fn()
}

// extractPlainPDF concatenates the plain text of every page.
func extractPlainPDF(filename string) (string, error) {
	file, r, err := pdf.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// image-only pages have no text layer
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
	}
	return out.String(), nil
}

// ExtractChapters extracts the PDF text and splits it at detected headings.
// Heading detection is best effort; without headings the whole document is
// one chapter.
func (f *PDFFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	chapters, words, _, err := f.extractChaptersWarn(filename)
	return chapters, words, err
}

func (f *PDFFormat) extractChaptersWarn(filename string) ([]Chapter, []string, []string, error) {
	res, err := f.parse(filename, true)
	if err != nil {
		return nil, nil, nil, err
	}
	words := Tokenize(res.text)

	var marks []headingMark
	from := 0
	for _, h := range res.headings {
		title := strings.Join(Tokenize(normalizeText(h.Text)), " ")
		if title == "" {
			continue
		}
		idx := indexWords(words, Tokenize(title), from)
		if idx < 0 {
			continue
		}
		level := int(h.Level) - 1
		if level < 0 {
			level = 0
		}
		marks = append(marks, headingMark{title: title, level: level, wordIndex: idx})
		from = idx + 1
	}

	return buildChapters(marks, len(words)), words, res.warnings, nil
}

// indexWords returns the first index >= from where needle occurs in words, or -1.
func indexWords(words, needle []string, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(words); i++ {
		match := true
		for j, w := range needle {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
