package reader

// TOCEntry is a single entry in a table of contents
type TOCEntry struct {
	Title     string
	Preview   string
	WordIndex int
	Level     int
}

// Chapter is a titled span of the word sequence, WordEnd inclusive
type Chapter struct {
	Title     string
	WordStart int
	WordEnd   int
}

// TOCProvider is an optional interface for formats that support TOC extraction
type TOCProvider interface {
	TOC(filename string) ([]TOCEntry, error)
}

// ChapterExtractor is an optional interface for chapter-aware extraction
type ChapterExtractor interface {
	ExtractChapters(filename string) ([]Chapter, []string, error)
}

// headingMark is a heading found while walking a document, positioned by the
// number of words that precede it.
type headingMark struct {
	title     string
	level     int
	wordIndex int
}

// buildChapters cuts words into chapters at each heading. Headings that start
// no content are folded into the next one. A document without headings
// becomes a single "Document" chapter.
func buildChapters(marks []headingMark, total int) []Chapter {
	var chapters []Chapter
	for i, m := range marks {
		end := total - 1
		if i+1 < len(marks) {
			end = marks[i+1].wordIndex - 1
		}
		if end < m.wordIndex {
			continue
		}
		chapters = append(chapters, Chapter{
			Title:     m.title,
			WordStart: m.wordIndex,
			WordEnd:   end,
		})
	}

	if len(chapters) > 0 && chapters[0].WordStart > 0 {
		chapters = append([]Chapter{{Title: "Front Matter", WordStart: 0, WordEnd: chapters[0].WordStart - 1}}, chapters...)
	}

	if len(chapters) == 0 && total > 0 {
		chapters = append(chapters, Chapter{
			Title:     "Document",
			WordStart: 0,
			WordEnd:   total - 1,
		})
	}
	return chapters
}

// chapterTOC lists chapters as a flat TOC for formats without their own.
func chapterTOC(chapters []Chapter, words []string) []TOCEntry {
	entries := make([]TOCEntry, 0, len(chapters))
	for _, ch := range chapters {
		preview := ""
		if ch.WordStart < len(words) {
			preview = Preview(words[ch.WordStart:], 10)
		}
		entries = append(entries, TOCEntry{
			Title:     ch.Title,
			Preview:   preview,
			WordIndex: ch.WordStart,
		})
	}
	return entries
}

// buildTOC turns heading marks into TOC entries with a short preview of the
// words that follow each heading.
func buildTOC(marks []headingMark, words []string) []TOCEntry {
	entries := make([]TOCEntry, 0, len(marks))
	for _, m := range marks {
		preview := ""
		if m.wordIndex < len(words) {
			preview = Preview(words[m.wordIndex:], 10)
		}
		entries = append(entries, TOCEntry{
			Title:     m.title,
			Preview:   preview,
			WordIndex: m.wordIndex,
			Level:     m.level,
		})
	}
	return entries
}
