package reader

import (
	"reflect"
	"testing"
)

func TestExtractTextFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "chapter page",
			html: `<html><head><title>Test</title></head><body>
				<h1>Chapter 1</h1>
				<p>This is the <b>first</b> paragraph.</p>
				<p>
					Second paragraph
					with a newline.
				</p>
			</body></html>`,
			want: []string{"Test", "Chapter", "1", "This", "is", "the", "first", "paragraph.", "Second", "paragraph", "with", "a", "newline."},
		},
		{
			name: "nested inline markup",
			html: `<div>Some <span>nested <em>deeply</em></span> text.</div>`,
			want: []string{"Some", "nested", "deeply", "text."},
		},
		{
			name: "script and style are skipped",
			html: `<body><script>var ignored = true;</script><style>p { color: red; }</style><p>Kept.</p></body>`,
			want: []string{"Kept."},
		},
		{
			name: "entities are decoded",
			html: `<p>Fish &amp; chips&nbsp;tonight</p>`,
			want: []string{"Fish", "&", "chips", "tonight"},
		},
		{
			name: "no text",
			html: `<html><body><img src="cover.png"/></body></html>`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(extractTextFromHTML(tt.html))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("words = %q, want %q", got, tt.want)
			}
		})
	}
}
