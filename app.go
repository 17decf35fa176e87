package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metcalfc/quickwit/internal/config"
	"github.com/metcalfc/quickwit/internal/reader"
	"github.com/metcalfc/quickwit/internal/session"
	"github.com/metcalfc/quickwit/internal/state"
	"go.uber.org/zap"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// UI speed range and step; the session itself accepts a wider range.
const (
	uiMinWPM  = 100
	uiMaxWPM  = 1500
	uiWPMStep = 50
)

type options struct {
	wpm         int
	wpmSet      bool
	configPath  string
	logFile     string
	fresh       bool
	showTOC     bool
	showVersion bool
	file        string
}

func parseFlags(name string, args []string, usage func(fs *flag.FlagSet)) (options, error) {
	var o options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&o.wpm, "w", session.DefaultWPM, "Words per minute")
	fs.StringVar(&o.configPath, "config", config.DefaultPath(), "Config file")
	fs.StringVar(&o.logFile, "log", "", "Write logs to this file")
	fs.BoolVar(&o.fresh, "fresh", false, "Ignore saved reading position")
	fs.BoolVar(&o.showTOC, "toc", false, "Show table of contents at startup")
	fs.BoolVar(&o.showVersion, "v", false, "Show version information")
	fs.BoolVar(&o.showVersion, "version", false, "Show version information")
	if usage != nil {
		fs.Usage = func() { usage(fs) }
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			o.wpmSet = true
		}
	})
	if fs.NArg() > 0 {
		o.file = fs.Arg(0)
	}
	return o, nil
}

// app holds what both front ends share: configuration, logging and the
// reading-position store.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store *state.StateStore
	fresh bool

	hash string
}

func newApp(o options) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.wpmSet {
		cfg.WPM = o.wpm
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	reader.SetPDFHeaderFooterFilter(cfg.ExcludeHeaders)

	a := &app{cfg: cfg, log: logger, fresh: o.fresh}

	dir := cfg.StateDir
	if dir == "" {
		dir = state.DefaultDir()
	}
	store, err := state.Open(dir)
	if err != nil {
		// reading still works, positions just are not remembered
		logger.Warn("position store unavailable", zap.String("dir", dir), zap.Error(err))
	} else {
		a.store = store
	}
	return a, nil
}

func (a *app) newSession(l session.Listener) *session.Session {
	return session.New(l, session.WithLogger(a.log), session.WithSpeed(a.cfg.WPM))
}

// track starts remembering positions for path and, unless disabled, moves
// sess to where the file was left off. It must run after the document is
// loaded into sess.
func (a *app) track(sess *session.Session, path string) {
	a.hash = ""
	if a.store == nil || path == "" {
		return
	}
	hash, err := state.ComputeHash(path)
	if err != nil {
		a.log.Warn("cannot hash document", zap.String("path", path), zap.Error(err))
		return
	}
	a.hash = hash

	if a.fresh || !a.cfg.Resume {
		return
	}
	if pos := a.store.GetPosition(hash); pos > 0 && pos < sess.Len() {
		a.log.Info("restoring position", zap.String("path", path), zap.Int("position", pos))
		sess.Seek(pos)
	}
}

// save records the word on screen for the tracked document. A finished
// document starts over next time.
func (a *app) save(sess *session.Session) {
	if a.store == nil || a.hash == "" {
		return
	}
	if sess.State() == session.Completed {
		a.forget()
		return
	}
	if err := a.store.SetPosition(a.hash, sess.Position()); err != nil {
		a.log.Warn("failed to save position", zap.Error(err))
	}
}

// forget drops the saved position for the tracked document.
func (a *app) forget() {
	if a.store == nil || a.hash == "" {
		return
	}
	if err := a.store.Clear(a.hash); err != nil {
		a.log.Warn("failed to clear position", zap.Error(err))
	}
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	a.log.Sync()
}

// readStdin returns piped input, or an error when stdin is a terminal.
func readStdin(name string) (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("no input provided. Provide a file or pipe text to stdin.\nTry: %s -h", name)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no text to read")
	}
	return string(data), nil
}

func clampUIWPM(wpm int) int {
	if wpm < uiMinWPM {
		return uiMinWPM
	}
	if wpm > uiMaxWPM {
		return uiMaxWPM
	}
	return wpm
}

// chapterAt returns the title of the chapter containing index.
func chapterAt(chapters []reader.Chapter, index int) string {
	for i := len(chapters) - 1; i >= 0; i-- {
		if index >= chapters[i].WordStart {
			return chapters[i].Title
		}
	}
	return ""
}
