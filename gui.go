//go:build gui

package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/metcalfc/quickwit/internal/reader"
	"github.com/metcalfc/quickwit/internal/session"
	"go.uber.org/zap"
)

// The slider covers the comfortable range; keyboard speed changes may go
// beyond it up to uiMaxWPM.
const (
	sliderMinWPM = 100
	sliderMaxWPM = 600
)

// window owns the widgets. Every method runs on the fyne main goroutine.
type window struct {
	app  *app
	sess *session.Session
	win  fyne.Window
	doc  *reader.Document

	word     string
	index    int
	total    int
	complete bool
	fontSize float32

	wordContainer *fyne.Container
	statusLabel   *widget.Label
	chapterLabel  *widget.Label
	wpmLabel      *widget.Label
	slider        *widget.Slider

	loadBtn, startBtn, stopBtn, resumeBtn, prevBtn, nextBtn *widget.Button

	tocList  *widget.List
	tocPane  *fyne.Container
	tocShown bool
}

func createWordDisplay(word string, focusColor color.Color, fontSize float32, windowWidth float32) *fyne.Container {
	before, focus, after := reader.SplitAtORP(word)

	beforeText := canvas.NewText(before, color.White)
	beforeText.TextSize = fontSize
	beforeText.TextStyle.Bold = true

	focusText := canvas.NewText(focus, focusColor)
	focusText.TextSize = fontSize
	focusText.TextStyle.Bold = true

	afterText := canvas.NewText(after, color.White)
	afterText.TextSize = fontSize
	afterText.TextStyle.Bold = true

	// Horizontal: anchor ORP at center
	centerX := windowWidth / 2
	beforeX := centerX - beforeText.MinSize().Width
	if beforeX < 0 {
		beforeX = 0
	}

	c := &fyne.Container{
		Layout:  &centerVerticalLayout{},
		Objects: []fyne.CanvasObject{beforeText, focusText, afterText},
	}
	beforeText.Move(fyne.NewPos(beforeX, 0))
	focusText.Move(fyne.NewPos(centerX, 0))
	afterText.Move(fyne.NewPos(centerX+focusText.MinSize().Width, 0))
	return c
}

// centerVerticalLayout centers its objects vertically and leaves the X
// positions set by createWordDisplay alone.
type centerVerticalLayout struct{}

func (l *centerVerticalLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, tallest(objects))
}

func (l *centerVerticalLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	y := (size.Height - tallest(objects)) / 2
	if y < 0 {
		y = 0
	}
	for _, o := range objects {
		o.Move(fyne.NewPos(o.Position().X, y))
		o.Resize(o.MinSize())
	}
}

func tallest(objects []fyne.CanvasObject) float32 {
	var maxH float32
	for _, o := range objects {
		if h := o.MinSize().Height; h > maxH {
			maxH = h
		}
	}
	return maxH
}

func newWindow(a *app, fa fyne.App) *window {
	w := &window{
		app:      a,
		win:      fa.NewWindow("quickwit - Speed Reader"),
		index:    -1,
		fontSize: 72,
	}
	w.sess = a.newSession(session.ListenerFunc(func(ev session.Event) {
		fyne.Do(func() { w.handleEvent(ev) })
	}))
	w.build()
	return w
}

func (w *window) build() {
	w.statusLabel = widget.NewLabel("")
	w.statusLabel.Alignment = fyne.TextAlignCenter
	w.chapterLabel = widget.NewLabel("")
	w.chapterLabel.Alignment = fyne.TextAlignCenter
	w.wordContainer = container.NewStack()

	w.loadBtn = widget.NewButton("Load PDF", w.chooseFile)
	w.startBtn = widget.NewButton("Start", w.start)
	w.stopBtn = widget.NewButton("Stop", func() {
		w.sess.Pause()
		w.refresh()
	})
	w.resumeBtn = widget.NewButton("Resume", func() {
		w.report(w.sess.Resume())
		w.refresh()
	})
	w.prevBtn = widget.NewButton("Previous", func() {
		w.sess.StepPrevious()
		w.refresh()
	})
	w.nextBtn = widget.NewButton("Next", func() {
		w.sess.StepNext()
		w.refresh()
	})

	w.wpmLabel = widget.NewLabel("")
	w.slider = widget.NewSlider(sliderMinWPM, sliderMaxWPM)
	w.slider.Step = 10
	w.slider.SetValue(float64(min(max(w.sess.Speed(), sliderMinWPM), sliderMaxWPM)))
	w.sess.SetSpeed(int(w.slider.Value))
	w.slider.OnChanged = func(v float64) {
		w.sess.SetSpeed(int(v))
		w.refresh()
	}

	buttons := container.NewHBox(w.loadBtn, w.startBtn, w.stopBtn, w.resumeBtn, w.prevBtn, w.nextBtn)
	speed := container.NewBorder(nil, nil, widget.NewLabel("Speed"), w.wpmLabel, w.slider)
	controls := container.NewVBox(container.NewCenter(buttons), speed)

	reading := container.NewBorder(
		container.NewVBox(w.statusLabel, w.chapterLabel),
		controls,
		nil, nil,
		w.wordContainer,
	)

	w.tocList = widget.NewList(
		func() int {
			if w.doc == nil {
				return 0
			}
			return len(w.doc.TOC)
		},
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewLabel("Title"), widget.NewLabel("Preview"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entry := w.doc.TOC[id]
			vbox := obj.(*fyne.Container)
			titleLabel := vbox.Objects[0].(*widget.Label)
			previewLabel := vbox.Objects[1].(*widget.Label)

			indent := strings.Repeat("  ", entry.Level)
			titleLabel.SetText(indent + entry.Title)
			titleLabel.TextStyle.Bold = true

			preview := []rune(entry.Preview)
			if len(preview) > 50 {
				preview = append(preview[:50], []rune("...")...)
			}
			previewLabel.SetText(indent + string(preview))
		},
	)
	w.tocList.OnSelected = func(id widget.ListItemID) {
		if w.doc == nil || id >= len(w.doc.TOC) {
			return
		}
		w.sess.Pause()
		w.sess.Seek(w.doc.TOC[id].WordIndex)
		w.tocList.UnselectAll()
		w.refresh()
	}
	w.tocPane = container.NewBorder(widget.NewLabel("Table of Contents"), nil, nil, nil, w.tocList)
	w.tocPane.Hide()

	split := container.NewHSplit(w.tocPane, reading)
	split.Offset = 0.3
	w.win.SetContent(split)

	w.win.Canvas().SetOnTypedKey(w.typedKey)
	w.win.Canvas().SetOnTypedRune(w.typedRune)
	w.win.SetOnClosed(func() {
		w.app.save(w.sess)
		w.sess.Close()
	})
	w.win.Resize(fyne.NewSize(900, 600))
	w.refresh()
}

// open loads path into the session, keeping the current document when
// extraction fails.
func (w *window) open(path string) {
	w.app.save(w.sess)

	doc, err := w.sess.Open(path)
	if err != nil {
		w.app.log.Warn("load failed", zap.String("path", path), zap.Error(err))
		dialog.ShowError(err, w.win)
		return
	}
	w.doc = doc
	w.word, w.index, w.total, w.complete = "", -1, len(doc.Words), false
	w.app.track(w.sess, doc.Path)

	w.tocList.Refresh()
	w.showTOC(w.tocShown && len(doc.TOC) > 0)
	w.win.SetTitle("quickwit - " + doc.Path)
	w.refresh()
}

func (w *window) chooseFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.win)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		w.open(path)
	}, w.win)
	fd.SetFilter(storage.NewExtensionFileFilter(reader.Extensions()))
	fd.Show()
}

func (w *window) start() {
	if w.sess.State() == session.Completed {
		w.sess.Restart()
	}
	w.report(w.sess.Start())
	w.refresh()
}

func (w *window) toggle() {
	switch w.sess.State() {
	case session.Playing:
		w.sess.Pause()
	case session.Paused:
		w.report(w.sess.Resume())
	default:
		w.start()
	}
	w.refresh()
}

func (w *window) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, session.ErrNoDocumentLoaded) {
		err = errors.New("no document loaded, use Load PDF to choose a file")
	}
	dialog.ShowError(err, w.win)
}

func (w *window) handleEvent(ev session.Event) {
	w.total = ev.Total
	switch ev.Kind {
	case session.EventWord:
		w.word, w.index, w.complete = ev.Word, ev.Index, false
	case session.EventCleared:
		w.word, w.index, w.complete = "", -1, false
	case session.EventCompleted:
		w.word, w.complete = ev.Word, true
	}
	w.refresh()
}

// refresh redraws the word and brings the controls in line with the run state.
func (w *window) refresh() {
	snap := w.sess.Snapshot()

	width := w.win.Canvas().Size().Width
	if width <= 0 {
		width = 900
	}
	focus := color.Color(color.RGBA{R: 255, A: 255})
	if w.complete {
		focus = color.RGBA{G: 255, A: 255}
	}
	w.wordContainer.Objects = []fyne.CanvasObject{createWordDisplay(w.word, focus, w.fontSize, width)}
	w.wordContainer.Refresh()

	w.statusLabel.SetText(fmt.Sprintf("Word %d/%d | %d WPM | %s", w.index+1, w.total, snap.WPM, snap.State))
	w.wpmLabel.SetText(fmt.Sprintf("%d WPM", snap.WPM))
	if w.doc != nil && len(w.doc.Chapters) > 1 {
		w.chapterLabel.SetText(chapterAt(w.doc.Chapters, max(w.index, 0)))
	} else {
		w.chapterLabel.SetText("")
	}

	setEnabled(w.loadBtn, snap.State != session.Playing)
	setEnabled(w.startBtn, snap.State != session.Playing && snap.State != session.Paused)
	setEnabled(w.stopBtn, snap.State == session.Playing)
	setEnabled(w.resumeBtn, snap.State == session.Paused)
	setEnabled(w.prevBtn, snap.State == session.Paused)
	setEnabled(w.nextBtn, snap.State == session.Paused)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (w *window) showTOC(on bool) {
	w.tocShown = on
	if on {
		w.tocPane.Show()
	} else {
		w.tocPane.Hide()
	}
}

func (w *window) typedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeySpace:
		w.toggle()
		return

	case fyne.KeyUp:
		w.sess.SetSpeed(clampUIWPM(w.sess.Speed() + uiWPMStep))

	case fyne.KeyDown:
		w.sess.SetSpeed(clampUIWPM(w.sess.Speed() - uiWPMStep))

	case fyne.KeyLeft:
		w.sess.Pause()
		w.sess.StepPrevious()

	case fyne.KeyRight:
		w.sess.Pause()
		w.sess.StepNext()

	case fyne.KeyF11:
		w.win.SetFullScreen(!w.win.FullScreen())

	case fyne.KeyQ:
		w.win.Close()
		return
	}
	w.refresh()
}

func (w *window) typedRune(r rune) {
	switch r {
	case '[':
		w.sess.Pause()
		w.sess.PrevSentence()
	case ']':
		w.sess.Pause()
		w.sess.NextSentence()
	case '+', '=':
		w.sess.SetSpeed(clampUIWPM(w.sess.Speed() + uiWPMStep))
	case '-':
		w.sess.SetSpeed(clampUIWPM(w.sess.Speed() - uiWPMStep))
	case 'r', 'R':
		w.sess.Restart()
		w.app.forget()
	case 't', 'T':
		if w.doc != nil && len(w.doc.TOC) > 0 {
			w.sess.Pause()
			w.showTOC(!w.tocShown)
		}
	case '>':
		if w.fontSize < 200 {
			w.fontSize += 5
		}
	case '<':
		if w.fontSize > 20 {
			w.fontSize -= 5
		}
	default:
		return
	}
	w.refresh()
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "quickwit - GUI Speed Reading Tool\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  quickwit [options] [file]\n\n")
	fmt.Fprintf(os.Stderr, "Supported formats: %s\n\n", strings.Join(reader.SupportedFormats(), ", "))
	fmt.Fprintf(os.Stderr, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  quickwit                    Open a window, then Load PDF\n")
	fmt.Fprintf(os.Stderr, "  quickwit -w 500 book.pdf    Open book.pdf at 500 WPM\n")
	fmt.Fprintf(os.Stderr, "  quickwit -toc book.epub     Show TOC panel at startup\n")
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

	a, err := newApp(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	w := newWindow(a, fyneapp.New())
	w.tocShown = opts.showTOC
	if opts.file != "" {
		w.open(opts.file)
	}
	w.win.ShowAndRun()
}
