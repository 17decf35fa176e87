// Package reader turns documents into the word sequences an RSVP (Rapid Serial
// Visual Presentation) session plays back.
package reader

import (
	"strings"
	"unicode/utf8"
)

// Document is the result of extracting a file: its raw text, the tokenized
// words and, for formats that know about structure, chapters and a TOC.
type Document struct {
	Path     string
	Format   string
	Text     string
	Words    []string
	Chapters []Chapter
	TOC      []TOCEntry
}

// Tokenize splits text into words on runs of whitespace. It never fails and
// returns an empty slice for empty or all-whitespace input.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	if words == nil {
		return []string{}
	}
	return words
}

// FindSentenceStarts returns indices of words that start sentences.
func FindSentenceStarts(words []string) []int {
	if len(words) == 0 {
		return nil
	}
	starts := []int{0}
	for i, word := range words {
		if i+1 >= len(words) || word == "" {
			continue
		}
		switch word[len(word)-1] {
		case '.', '!', '?':
			starts = append(starts, i+1)
		}
	}
	return starts
}

// GetORPPosition returns the Optimal Recognition Point index for a word.
// This is the rune position where the eye should focus for fastest recognition.
func GetORPPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

// SplitAtORP splits word around its focus rune.
func SplitAtORP(word string) (before, focus, after string) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", "", ""
	}
	orp := GetORPPosition(word)
	if orp >= len(runes) {
		orp = len(runes) - 1
	}
	return string(runes[:orp]), string(runes[orp]), string(runes[orp+1:])
}

// Preview joins the first n words of words, adding an ellipsis when truncated.
func Preview(words []string, n int) string {
	if len(words) == 0 {
		return ""
	}
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
