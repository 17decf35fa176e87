package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTMLFormatExtract(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Speed Reading</title></head>
<body>
	<article>
		<h1>Speed Reading</h1>
		<p>Rapid serial visual presentation shows one word at a time in a fixed place.</p>
		<p>Readers keep their eyes still, which removes the saccades of normal reading.</p>
	</article>
</body>
</html>`
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	text, err := (&HTMLFormat{}).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	joined := strings.Join(Tokenize(text), " ")
	for _, want := range []string{"one word at a time", "saccades of normal reading."} {
		if !strings.Contains(joined, want) {
			t.Errorf("extracted text %q missing %q", joined, want)
		}
	}
	if strings.Contains(joined, "<p>") {
		t.Errorf("markup leaked into text: %q", joined)
	}
}

func TestHTMLFormatMissingFile(t *testing.T) {
	if _, err := (&HTMLFormat{}).Extract(filepath.Join(t.TempDir(), "nope.html")); err == nil {
		t.Error("expected error")
	}
}
