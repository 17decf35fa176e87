//go:build !gui

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/metcalfc/quickwit/internal/reader"
	"github.com/metcalfc/quickwit/internal/session"
	"go.uber.org/zap"
)

var (
	erpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordBeforeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	wordAfterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	chapterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)
)

type keyMap struct {
	Toggle       key.Binding
	Previous     key.Binding
	Next         key.Binding
	PrevSentence key.Binding
	NextSentence key.Binding
	Faster       key.Binding
	Slower       key.Binding
	Restart      key.Binding
	TOC          key.Binding
	Select       key.Binding
	Quit         key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Previous, k.Next, k.PrevSentence, k.NextSentence, k.Faster, k.Slower, k.Restart, k.TOC, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Previous:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev word")),
		Next:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next word")),
		PrevSentence: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev sentence")),
		NextSentence: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next sentence")),
		Faster:       key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑/+", "faster")),
		Slower:       key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓/-", "slower")),
		Restart:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		TOC:          key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "contents")),
		Select:       key.NewBinding(key.WithKeys("enter")),
		Quit:         key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// eventMsg carries a session event into the bubbletea loop.
type eventMsg session.Event

// programSink forwards session events to the running program. Events that
// arrive before the program exists are dropped; Send is a no-op once the
// program has exited.
type programSink struct {
	p atomic.Pointer[tea.Program]
}

func (s *programSink) HandleEvent(ev session.Event) {
	if p := s.p.Load(); p != nil {
		p.Send(eventMsg(ev))
	}
}

type model struct {
	sess *session.Session
	doc  *reader.Document

	word     string
	index    int
	total    int
	complete bool
	status   string
	quitting bool
	width    int
	height   int

	showTOC  bool
	selected int

	keys     keyMap
	help     help.Model
	progress progress.Model
}

func newModel(sess *session.Session, doc *reader.Document) model {
	return model{
		sess:     sess,
		doc:      doc,
		index:    -1,
		total:    sess.Len(),
		width:    80,
		height:   24,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m model) Init() tea.Cmd {
	if m.showTOC {
		return nil
	}
	return m.start()
}

// start begins or resumes playback, reporting a failure on the status line.
func (m model) start() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		var err error
		switch sess.State() {
		case session.Paused:
			err = sess.Resume()
		case session.Completed:
			sess.Restart()
			err = sess.Start()
		default:
			err = sess.Start()
		}
		if err != nil {
			return errMsg{err}
		}
		return nil
	}
}

type errMsg struct{ err error }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.total = msg.Total
		switch msg.Kind {
		case session.EventWord:
			m.word, m.index, m.complete = msg.Word, msg.Index, false
		case session.EventCleared:
			m.word, m.index, m.complete = "", -1, false
		case session.EventCompleted:
			m.word, m.complete = msg.Word, true
		}
		return m, nil

	case errMsg:
		if errors.Is(msg.err, session.ErrNoDocumentLoaded) {
			m.status = "No document loaded"
		} else {
			m.status = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.sess.Pause()
			return m, tea.Quit
		}
		if m.showTOC {
			return m.updateTOC(msg)
		}
		return m.updateReading(msg)
	}

	return m, nil
}

func (m model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.sess.State() == session.Playing {
			m.sess.Pause()
			return m, nil
		}
		return m, m.start()

	case key.Matches(msg, m.keys.Previous):
		m.sess.Pause()
		m.sess.StepPrevious()

	case key.Matches(msg, m.keys.Next):
		m.sess.Pause()
		m.sess.StepNext()

	case key.Matches(msg, m.keys.PrevSentence):
		m.sess.Pause()
		m.sess.PrevSentence()

	case key.Matches(msg, m.keys.NextSentence):
		m.sess.Pause()
		m.sess.NextSentence()

	case key.Matches(msg, m.keys.Faster):
		m.sess.SetSpeed(clampUIWPM(m.sess.Speed() + uiWPMStep))

	case key.Matches(msg, m.keys.Slower):
		m.sess.SetSpeed(clampUIWPM(m.sess.Speed() - uiWPMStep))

	case key.Matches(msg, m.keys.Restart):
		m.sess.Restart()

	case key.Matches(msg, m.keys.TOC):
		if m.doc != nil && len(m.doc.TOC) > 0 {
			m.sess.Pause()
			m.showTOC = true
		}
	}
	return m, nil
}

func (m model) updateTOC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.doc.TOC
	switch {
	case key.Matches(msg, m.keys.Faster): // up
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Slower): // down
		if m.selected < len(entries)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Select):
		m.showTOC = false
		m.sess.Seek(entries[m.selected].WordIndex)
	case key.Matches(msg, m.keys.TOC), msg.Type == tea.KeyEsc:
		m.showTOC = false
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		if m.complete {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}
	if m.showTOC {
		return m.tocView()
	}

	snap := m.sess.Snapshot()
	if snap.Total == 0 {
		return "No text to read."
	}

	state := ""
	switch snap.State {
	case session.Paused:
		state = pausedStyle.Render(" [PAUSED]")
	case session.Idle:
		state = pausedStyle.Render(" [READY]")
	}

	status := statusStyle.Render(
		fmt.Sprintf("Word %d/%d | %d WPM%s",
			m.index+1,
			m.total,
			snap.WPM,
			state,
		),
	)

	var header strings.Builder
	header.WriteString(status)
	header.WriteString("\n")
	if m.doc != nil && len(m.doc.Chapters) > 1 {
		header.WriteString(chapterStyle.Render(chapterAt(m.doc.Chapters, max(m.index, 0))))
	}
	header.WriteString("\n")

	var line string
	switch {
	case m.complete:
		line = anchorORPText(completeStyle.Render(m.word), m.word, m.width)
	case m.word != "":
		line = anchorORPText(formatWord(m.word), m.word, m.width)
	}

	footer := m.progress.ViewAs(m.fraction()) + "\n"
	if m.status != "" {
		footer += errorStyle.Render(m.status) + "\n"
	}
	footer += m.help.View(m.keys)

	// Reserve lines for the header and footer
	avail := m.height - lipgloss.Height(header.String()) - lipgloss.Height(footer)
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder
	sb.WriteString(header.String())
	sb.WriteString(strings.Repeat("\n", vPad))
	sb.WriteString(line)
	sb.WriteString(strings.Repeat("\n", avail-vPad))
	sb.WriteString(footer)
	return sb.String()
}

func (m model) tocView() string {
	var sb strings.Builder
	sb.WriteString(statusStyle.Render("Contents (enter: jump, esc: back)"))
	sb.WriteString("\n\n")

	entries := m.doc.TOC
	rows := max(m.height-4, 1)
	first := 0
	if m.selected >= rows {
		first = m.selected - rows + 1
	}
	for i := first; i < len(entries) && i < first+rows; i++ {
		e := entries[i]
		title := strings.Repeat("  ", e.Level) + e.Title
		if i == m.selected {
			sb.WriteString(selectedStyle.Render("> " + title))
		} else {
			sb.WriteString("  " + title)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) fraction() float64 {
	if m.complete {
		return 1
	}
	if m.total == 0 || m.index < 0 {
		return 0
	}
	return float64(m.index+1) / float64(m.total)
}

func formatWord(word string) string {
	before, focus, after := reader.SplitAtORP(word)
	return wordBeforeStyle.Render(before) +
		erpStyle.Render(focus) +
		wordAfterStyle.Render(after)
}

func anchorORPText(text string, word string, width int) string {
	anchor := width / 2
	orp := reader.GetORPPosition(word)
	pad := anchor - orp
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "quickwit - Terminal Speed Reading Tool\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  quickwit [options] [file]\n\n")
	fmt.Fprintf(os.Stderr, "Supported formats: %s (anything else is read as plain text)\n\n", strings.Join(reader.SupportedFormats(), ", "))
	fmt.Fprintf(os.Stderr, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  quickwit book.pdf              Read a PDF at 300 WPM\n")
	fmt.Fprintf(os.Stderr, "  quickwit -w 500 book.epub      Read an EPUB at 500 WPM\n")
	fmt.Fprintf(os.Stderr, "  quickwit -toc notes.md         Pick a chapter first\n")
	fmt.Fprintf(os.Stderr, "  cat file.txt | quickwit        Read from stdin\n")
	fmt.Fprintf(os.Stderr, "\nControls:\n")
	fmt.Fprintf(os.Stderr, "  SPACE    Start/pause/resume\n")
	fmt.Fprintf(os.Stderr, "  ←/→      Step to previous/next word\n")
	fmt.Fprintf(os.Stderr, "  [/]      Jump to previous/next sentence\n")
	fmt.Fprintf(os.Stderr, "  ↑/↓ +/-  Increase/decrease speed by 50 WPM\n")
	fmt.Fprintf(os.Stderr, "  R        Restart\n")
	fmt.Fprintf(os.Stderr, "  T        Table of contents\n")
	fmt.Fprintf(os.Stderr, "  Q        Quit\n")
}

func main() {
	opts, err := parseFlags("quickwit", os.Args[1:], usage)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("quickwit %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	sink := &programSink{}
	sess := a.newSession(sink)
	defer sess.Close()

	doc, err := loadInput(opts, a.log)
	if err != nil {
		return err
	}

	m := newModel(sess, doc)
	m.total = len(doc.Words)
	m.showTOC = opts.showTOC && len(doc.TOC) > 0
	p := tea.NewProgram(m, tea.WithAltScreen())
	sink.p.Store(p)

	sess.Load(doc.Words)
	a.track(sess, doc.Path)

	if _, err := p.Run(); err != nil {
		return err
	}
	a.save(sess)
	return nil
}

// loadInput extracts the document named on the command line or wraps piped
// stdin as plain text.
func loadInput(opts options, log *zap.Logger) (*reader.Document, error) {
	if opts.file != "" {
		return reader.Files{Logger: log}.Open(opts.file)
	}
	text, err := readStdin("quickwit")
	if err != nil {
		return nil, err
	}
	return &reader.Document{Format: "text", Text: text, Words: reader.Tokenize(text)}, nil
}
