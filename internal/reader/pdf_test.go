package reader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTestPDF writes a one-page PDF showing text in Helvetica and returns
// its path.
func writeTestPDF(t *testing.T, text string) string {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestPDFFormat(t *testing.T) {
	f := &PDFFormat{}
	if f.Name() != "PDF" {
		t.Errorf("Name() = %q, want PDF", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 1 || exts[0] != ".pdf" {
		t.Errorf("Extensions() = %v, want [.pdf]", exts)
	}
}

func TestPDFHeaderFooterFilterToggle(t *testing.T) {
	defer SetPDFHeaderFooterFilter(true)

	SetPDFHeaderFooterFilter(false)
	if !pdfFormat.KeepHeadersFooters {
		t.Error("filter off should keep headers and footers")
	}
	SetPDFHeaderFooterFilter(true)
	if pdfFormat.KeepHeadersFooters {
		t.Error("filter on should drop headers and footers")
	}
}

func TestPDFExtractCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nnot really"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := extractPlainPDF(path); err == nil {
		t.Error("extractPlainPDF should reject a truncated file")
	}
}

func TestPDFExtractMissing(t *testing.T) {
	f := &PDFFormat{}
	if _, err := f.Extract(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing pdf")
	}
}

func TestPDFExtractGenerated(t *testing.T) {
	path := writeTestPDF(t, "Hello speed reader world")
	want := []string{"Hello", "speed", "reader", "world"}

	tests := []struct {
		name    string
		extract func(string) (string, error)
	}{
		{"tabula", (&PDFFormat{}).Extract},
		{"tabula keeping headers", (&PDFFormat{KeepHeadersFooters: true}).Extract},
		{"plain reader", extractPlainPDF},
		{"registry", ExtractText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.extract(path)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got := Tokenize(text); !reflect.DeepEqual(got, want) {
				t.Errorf("words = %q, want %q", got, want)
			}
		})
	}
}

func TestPDFExtractUsesTabula(t *testing.T) {
	path := writeTestPDF(t, "Hello speed reader world")

	_, warnings, err := (&PDFFormat{}).extractWarn(path)
	if err != nil {
		t.Fatalf("extractWarn: %v", err)
	}
	for _, w := range warnings {
		if strings.HasPrefix(w, "tabula failed") {
			t.Errorf("well-formed pdf fell back to the plain reader: %s", w)
		}
	}
}

func TestPDFChaptersWithoutHeadings(t *testing.T) {
	path := writeTestPDF(t, "Hello speed reader world")

	chapters, words, warnings, err := (&PDFFormat{}).extractChaptersWarn(path)
	if err != nil {
		t.Fatalf("extractChaptersWarn: %v", err)
	}
	if len(words) != 4 {
		t.Errorf("words = %q, want 4", words)
	}
	want := []Chapter{{Title: "Document", WordStart: 0, WordEnd: 3}}
	if !reflect.DeepEqual(chapters, want) {
		t.Errorf("chapters = %+v, want %+v", chapters, want)
	}
	for _, w := range warnings {
		if strings.HasPrefix(w, "heading detection failed") {
			t.Errorf("unexpected warning %q", w)
		}
	}
}

func TestPDFOpenGenerated(t *testing.T) {
	path := writeTestPDF(t, "Hello speed reader world")

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Format != "PDF" {
		t.Errorf("Format = %q, want PDF", doc.Format)
	}
	if want := []string{"Hello", "speed", "reader", "world"}; !reflect.DeepEqual(doc.Words, want) {
		t.Errorf("Words = %q, want %q", doc.Words, want)
	}
	if want := []Chapter{{Title: "Document", WordStart: 0, WordEnd: 3}}; !reflect.DeepEqual(doc.Chapters, want) {
		t.Errorf("Chapters = %+v, want %+v", doc.Chapters, want)
	}
	if len(doc.TOC) != 0 {
		t.Errorf("single chapter should have no toc, got %d entries", len(doc.TOC))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\ufb01nd the \ufb02ow", "find the flow"},
		{"\uff21\uff22\uff23", "ABC"},
		{"plain text", "plain text"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// fixturePDF is an optional text PDF used for integration checks.
const fixturePDF = "../../testdata/sample.pdf"

func TestPDFOpenFixture(t *testing.T) {
	if _, err := os.Stat(fixturePDF); os.IsNotExist(err) {
		t.Skip("sample.pdf not found, skipping test")
	}

	doc, err := Open(fixturePDF)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(doc.Words) == 0 {
		t.Fatal("expected words from sample.pdf")
	}
	for i := 1; i < len(doc.Chapters); i++ {
		if doc.Chapters[i].WordStart != doc.Chapters[i-1].WordEnd+1 {
			t.Errorf("Gap between chapter %d and %d", i-1, i)
		}
	}
	t.Logf("%d words, %d chapters", len(doc.Words), len(doc.Chapters))
}
