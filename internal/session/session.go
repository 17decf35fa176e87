// Package session implements the pacing and navigation state machine of an
// RSVP reading session: a word sequence, a cursor, a speed and a run state,
// driven by commands and reporting what to display through a Listener.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/metcalfc/quickwit/internal/reader"
	"go.uber.org/zap"
)

// Speed limits in words per minute. MaxWPM keeps the per-word delay at one
// millisecond or more.
const (
	MinWPM     = 1
	MaxWPM     = 60000
	DefaultWPM = 300

	finalWordFactor = 3
)

var (
	// ErrNoDocumentLoaded is returned by Start and Resume when there are no words.
	ErrNoDocumentLoaded = errors.New("no document loaded")
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("session closed")
)

// RunState is the playback lifecycle phase.
type RunState int

const (
	Idle RunState = iota
	Playing
	Paused
	Completed
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Source supplies documents by path.
type Source interface {
	Open(path string) (*reader.Document, error)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithSpeed sets the initial speed in words per minute.
func WithSpeed(wpm int) Option {
	return func(s *Session) { s.wpm = clampWPM(wpm) }
}

// WithSource sets where Open reads documents from. The default reads files
// through the reader package.
func WithSource(src Source) Option {
	return func(s *Session) { s.source = src }
}

// Snapshot is a consistent view of the session state.
type Snapshot struct {
	State  RunState
	Cursor int
	Total  int
	WPM    int
}

// Session is safe for concurrent use. Every mutation happens under one mutex
// and events reach the Listener in mutation order.
type Session struct {
	mu        sync.Mutex
	words     []string
	sentences []int
	cursor    int
	wpm       int
	state     RunState
	closed    bool

	// gen invalidates timers that fired after a pause, load or restart.
	gen   uint64
	timer *time.Timer

	log    *zap.Logger
	source Source
	events *dispatcher
}

// New creates an idle session with no words. Call Close when done.
func New(l Listener, opts ...Option) *Session {
	s := &Session{
		words: []string{},
		wpm:   DefaultWPM,
		state: Idle,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = reader.Files{Logger: s.log}
	}
	s.events = newDispatcher(l)
	return s
}

// Close stops playback and delivers pending events. It must not be called
// from the Listener.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()

	s.events.close()
}

// Open extracts path through the session's Source and loads its words.
// On failure the current session is left untouched and the error is a
// *reader.DocumentLoadError.
func (s *Session) Open(path string) (*reader.Document, error) {
	doc, err := s.source.Open(path)
	if err != nil {
		var le *reader.DocumentLoadError
		if !errors.As(err, &le) {
			err = &reader.DocumentLoadError{Path: path, Err: err}
		}
		return nil, err
	}
	s.Load(doc.Words)
	return doc, nil
}

// Load replaces the word sequence, stopping playback first if needed. The
// cursor returns to 0 and the session to Idle.
func (s *Session) Load(words []string) {
	cp := make([]string, len(words))
	copy(cp, words)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Playing {
		s.log.Debug("stopping playback for load")
	}
	s.stopLocked()
	s.words = cp
	s.sentences = reader.FindSentenceStarts(cp)
	s.cursor = 0
	s.state = Idle
	s.events.push(Event{Kind: EventCleared, Index: -1, Total: len(cp)})
	s.log.Debug("loaded", zap.Int("words", len(cp)))
}

// SetSpeed sets the speed, clamped to [MinWPM, MaxWPM]. It applies from the
// next word on.
func (s *Session) SetSpeed(wpm int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wpm = clampWPM(wpm)
}

// Start begins playback from the current cursor. It is a no-op while Playing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

// Resume continues playback after Pause. It is a no-op in any other state.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		s.ignored("resume")
		return nil
	}
	return s.startLocked()
}

// Pause stops playback before the next wait. It is a no-op unless Playing.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		s.ignored("pause")
		return
	}
	s.stopLocked()
	s.state = Paused
	s.log.Debug("paused", zap.Int("cursor", s.cursor))
}

// StepPrevious shows the word at the cursor and then moves the cursor back
// one place. Only valid while Paused; does nothing at the start.
func (s *Session) StepPrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused || s.cursor == 0 {
		s.ignored("step previous")
		return
	}
	idx := s.cursor
	if idx >= len(s.words) {
		idx = len(s.words) - 1
	}
	s.emitWordLocked(idx)
	s.cursor--
}

// StepNext shows the word at the cursor and moves the cursor forward one
// place. Only valid while Paused; never moves past the end.
func (s *Session) StepNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused || s.cursor >= len(s.words) {
		s.ignored("step next")
		return
	}
	s.emitWordLocked(s.cursor)
	s.cursor++
}

// Seek shows the word at index and continues from the word after it.
// Ignored while Playing. A completed session becomes Paused.
func (s *Session) Seek(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(index)
}

// PrevSentence seeks to the start of the sentence before the one on screen.
func (s *Session) PrevSentence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.shownLocked()
	for i := len(s.sentences) - 1; i >= 0; i-- {
		if s.sentences[i] < current {
			s.seekLocked(s.sentences[i])
			return
		}
	}
	s.seekLocked(0)
}

// NextSentence seeks to the start of the sentence after the one on screen,
// or to the last word.
func (s *Session) NextSentence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.shownLocked()
	for _, start := range s.sentences {
		if start > current {
			s.seekLocked(start)
			return
		}
	}
	s.seekLocked(len(s.words) - 1)
}

// Restart stops playback and rewinds to the first word.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.cursor = 0
	s.state = Idle
	s.events.push(Event{Kind: EventCleared, Index: -1, Total: len(s.words)})
}

// State returns the current run state.
func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the index of the next word to display.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Position returns the index of the word most recently shown, or 0.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shownLocked()
}

// Speed returns the speed in words per minute.
func (s *Session) Speed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wpm
}

// Len returns the number of words loaded.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.words)
}

// Delay returns the time each word stays on screen at the current speed.
func (s *Session) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delayLocked()
}

// Snapshot returns state, cursor, length and speed in one read.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Cursor: s.cursor, Total: len(s.words), WPM: s.wpm}
}

func (s *Session) startLocked() error {
	if s.closed {
		return ErrClosed
	}
	if len(s.words) == 0 {
		return ErrNoDocumentLoaded
	}
	if s.state == Playing {
		s.ignored("start")
		return nil
	}
	s.state = Playing
	s.gen++
	s.log.Debug("playing", zap.Int("cursor", s.cursor), zap.Int("wpm", s.wpm))
	s.advanceLocked(s.gen)
	return nil
}

// advanceLocked shows the word at the cursor and schedules the next step, or
// completes the session when the sequence is exhausted.
func (s *Session) advanceLocked(gen uint64) {
	n := len(s.words)
	if s.cursor >= n {
		s.timer = nil
		s.state = Completed
		s.events.push(Event{Kind: EventCompleted, Word: CompletionText, Index: -1, Total: n})
		s.log.Debug("completed", zap.Int("words", n))
		return
	}

	s.emitWordLocked(s.cursor)
	s.cursor++

	delay := s.delayLocked()
	if s.cursor == n {
		delay *= finalWordFactor
	}
	s.timer = time.AfterFunc(delay, func() { s.tick(gen) })
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != Playing {
		return
	}
	s.advanceLocked(gen)
}

// stopLocked cancels the pending timer. Timers that already fired see a
// stale generation and do nothing.
func (s *Session) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) seekLocked(index int) {
	n := len(s.words)
	if s.state == Playing || n == 0 {
		s.ignored("seek")
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	if s.state == Completed {
		s.state = Paused
	}
	s.emitWordLocked(index)
	s.cursor = index + 1
}

// shownLocked is the index of the word on screen: the one before the cursor.
func (s *Session) shownLocked() int {
	if s.cursor == 0 {
		return 0
	}
	return s.cursor - 1
}

func (s *Session) emitWordLocked(i int) {
	s.events.push(Event{Kind: EventWord, Word: s.words[i], Index: i, Total: len(s.words)})
}

func (s *Session) delayLocked() time.Duration {
	return time.Minute / time.Duration(clampWPM(s.wpm))
}

func (s *Session) ignored(cmd string) {
	s.log.Debug("command ignored", zap.String("command", cmd), zap.Stringer("state", s.state), zap.Int("cursor", s.cursor))
}

func clampWPM(wpm int) int {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}
