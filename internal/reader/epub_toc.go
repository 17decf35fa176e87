package reader

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap struct {
		NavPoints []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

func (np navPoint) title() string { return strings.TrimSpace(np.Label.Text) }

// file is the content document the nav point targets, without fragment.
func (np navPoint) file() string {
	href := np.Content.Src
	if i := strings.IndexByte(href, '#'); i != -1 {
		href = href[:i]
	}
	return href
}

// TOC extracts the table of contents from an EPUB file.
func (f *EPUBFormat) TOC(filename string) ([]TOCEntry, error) {
	var entries []TOCEntry
	err := withBook(filename, func(book *epub.Rootfile) error {
		points, err := readNavPoints(book)
		if err != nil {
			return err
		}

		starts := make(map[string]spineDoc)
		offsets := make(map[string]int)
		count := 0
		for _, d := range spineDocs(book) {
			for _, key := range []string{d.href, path.Base(d.href)} {
				if _, seen := starts[key]; !seen {
					starts[key] = d
					offsets[key] = count
				}
			}
			count += len(d.words)
		}

		var walk func([]navPoint, int)
		walk = func(points []navPoint, level int) {
			for _, np := range points {
				entry := TOCEntry{Title: np.title(), Level: level}
				for _, key := range []string{np.file(), path.Base(np.file())} {
					if d, ok := starts[key]; ok {
						entry.WordIndex = offsets[key]
						entry.Preview = Preview(d.words, 10)
						break
					}
				}
				entries = append(entries, entry)
				walk(np.Children, level+1)
			}
		}
		walk(points, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// hrefTitles maps every href form a nav point may be matched by (full,
// without fragment, base name) to its title. The first nav point wins.
func hrefTitles(book *epub.Rootfile) map[string]string {
	result := make(map[string]string)
	points, err := readNavPoints(book)
	if err != nil {
		return result
	}

	var walk func([]navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			for _, key := range []string{np.Content.Src, np.file(), path.Base(np.file())} {
				if _, exists := result[key]; !exists {
					result[key] = np.title()
				}
			}
			walk(np.Children)
		}
	}
	walk(points)
	return result
}

// readNavPoints finds the NCX in the manifest and parses its nav map.
func readNavPoints(book *epub.Rootfile) ([]navPoint, error) {
	var item *epub.Item
	for i := range book.Manifest.Items {
		it := &book.Manifest.Items[i]
		if it.MediaType == "application/x-dtbncx+xml" || strings.HasSuffix(strings.ToLower(it.HREF), ".ncx") {
			item = it
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	r, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open NCX: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read NCX: %w", err)
	}

	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	return toc.NavMap.NavPoints, nil
}
