package reader

import (
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentence",
			input:    "Hello world this is a test",
			expected: []string{"Hello", "world", "this", "is", "a", "test"},
		},
		{
			name:     "mixed whitespace",
			input:    "a  b\tc\nd",
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "only whitespace",
			input:    " \t\n\r\n  ",
			expected: []string{},
		},
		{
			name:     "leading and trailing whitespace",
			input:    "\n\n  Hello\tworld  \n",
			expected: []string{"Hello", "world"},
		},
		{
			name:     "punctuation stays attached",
			input:    "Hello, world! How are you?",
			expected: []string{"Hello,", "world!", "How", "are", "you?"},
		},
		{
			name:     "unicode whitespace",
			input:    "naïve café über",
			expected: []string{"naïve", "café", "über"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.input)
			if result == nil {
				t.Fatal("Tokenize() returned nil, want empty slice")
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("Tokenize() = %q, want %q", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Tokenize()[%d] = %q, want %q", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestFindSentenceStarts(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"empty", "", nil},
		{"one sentence", "Just one sentence", []int{0}},
		{"three sentences", "One. Two words! Three? End", []int{0, 1, 3, 4}},
		{"trailing period not counted", "Stop here.", []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSentenceStarts(Tokenize(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("FindSentenceStarts() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("FindSentenceStarts()[%d] = %d, want %d", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestGetORPPosition(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		expected int
	}{
		{"single char", "a", 0},
		{"two chars", "ab", 1},
		{"five chars", "abcde", 1},
		{"six chars", "abcdef", 2},
		{"nine chars", "abcdefghi", 3},
		{"twelve chars", "abcdefghijkl", 4},
		{"multibyte runes", "äöüäöü", 2},
		{"empty string", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetORPPosition(tt.word); got != tt.expected {
				t.Errorf("GetORPPosition(%q) = %d, want %d", tt.word, got, tt.expected)
			}
		})
	}
}

func TestSplitAtORP(t *testing.T) {
	tests := []struct {
		word                 string
		before, focus, after string
	}{
		{"", "", "", ""},
		{"a", "", "a", ""},
		{"hello", "h", "e", "llo"},
		{"hello,", "he", "l", "lo,"},
		{"größer", "gr", "ö", "ßer"},
	}

	for _, tt := range tests {
		before, focus, after := SplitAtORP(tt.word)
		if before != tt.before || focus != tt.focus || after != tt.after {
			t.Errorf("SplitAtORP(%q) = %q %q %q, want %q %q %q",
				tt.word, before, focus, after, tt.before, tt.focus, tt.after)
		}
	}
}

func TestPreview(t *testing.T) {
	words := Tokenize("one two three four")
	if got := Preview(words, 10); got != "one two three four" {
		t.Errorf("Preview() = %q", got)
	}
	if got := Preview(words, 2); got != "one two..." {
		t.Errorf("Preview() = %q", got)
	}
	if got := Preview(nil, 2); got != "" {
		t.Errorf("Preview(nil) = %q", got)
	}
}

func TestBuildChapters(t *testing.T) {
	marks := []headingMark{
		{title: "Intro", wordIndex: 3},
		{title: "Empty", wordIndex: 6},
		{title: "Body", wordIndex: 6},
	}
	chapters := buildChapters(marks, 10)

	want := []Chapter{
		{Title: "Front Matter", WordStart: 0, WordEnd: 2},
		{Title: "Intro", WordStart: 3, WordEnd: 5},
		{Title: "Body", WordStart: 6, WordEnd: 9},
	}
	if len(chapters) != len(want) {
		t.Fatalf("buildChapters() = %+v, want %+v", chapters, want)
	}
	for i := range want {
		if chapters[i] != want[i] {
			t.Errorf("chapter %d = %+v, want %+v", i, chapters[i], want[i])
		}
	}

	if got := buildChapters(nil, 0); len(got) != 0 {
		t.Errorf("buildChapters(nil, 0) = %+v, want none", got)
	}
}

func TestIndexWords(t *testing.T) {
	words := Tokenize("Chapter 1 text Chapter 2 more text Chapter 1 again")
	tests := []struct {
		needle string
		from   int
		want   int
	}{
		{"Chapter 1", 0, 0},
		{"Chapter 1", 1, 7},
		{"Chapter 2", 0, 3},
		{"Chapter 3", 0, -1},
		{"", 0, -1},
		{"again", 9, 9},
	}
	for _, tt := range tests {
		if got := indexWords(words, Tokenize(tt.needle), tt.from); got != tt.want {
			t.Errorf("indexWords(%q, %d) = %d, want %d", tt.needle, tt.from, got, tt.want)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := strings.Repeat("Hello world this is a test sentence with multiple words. ", 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tokenize(text)
	}
}
