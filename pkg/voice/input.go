package voice

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// InputState is the observable state of voice input.
type InputState int

const (
	InputIdle InputState = iota
	InputListening
)

func (s InputState) String() string {
	if s == InputListening {
		return "listening"
	}
	return "idle"
}

// QueryField receives transcribed text.
type QueryField interface {
	AppendQuery(text string)
}

// InputOption configures an Input.
type InputOption func(*Input)

// WithInputLogger sets the structured logger.
func WithInputLogger(l *slog.Logger) InputOption {
	return func(in *Input) { in.logger = l }
}

// WithInputNotice sets the function that shows user-visible notices.
func WithInputNotice(fn func(message string)) InputOption {
	return func(in *Input) { in.notice = fn }
}

// WithRecognitionConfig overrides the recognition session settings.
func WithRecognitionConfig(cfg RecognitionConfig) InputOption {
	return func(in *Input) { in.cfg = cfg }
}

// Input feeds dictated speech into a query field.
type Input struct {
	rec    Recognizer
	field  QueryField
	cfg    RecognitionConfig
	logger *slog.Logger
	notice func(string)

	mu       sync.Mutex
	state    InputState
	starting bool   // Start issued, platform has not confirmed yet
	gen      uint64 // current platform session
	closed   bool
	onState  func(InputState)
}

// NewInput creates a voice input adapter. A nil recognizer yields an inert
// adapter that only reports ErrUnsupported.
func NewInput(rec Recognizer, field QueryField, opts ...InputOption) *Input {
	in := &Input{
		rec:    rec,
		field:  field,
		cfg:    DefaultRecognitionConfig(),
		logger: slog.Default(),
		notice: func(string) {},
	}
	for _, opt := range opts {
		opt(in)
	}
	in.logger = in.logger.With("component", "voice.input")
	return in
}

// Supported reports whether a recognizer is available.
func (in *Input) Supported() bool { return in.rec != nil }

// State returns the current state.
func (in *Input) State() InputState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// OnStateChange registers fn to run after every state transition.
func (in *Input) OnStateChange(fn func(InputState)) {
	in.mu.Lock()
	in.onState = fn
	in.mu.Unlock()
}

// Toggle starts listening when idle and stops when a session is active.
func (in *Input) Toggle() error {
	in.mu.Lock()
	active := in.state == InputListening || in.starting
	in.mu.Unlock()

	if active {
		in.Stop()
		return nil
	}
	return in.Start()
}

// Start begins a recognition session. It is ignored while one is already
// active.
func (in *Input) Start() error {
	if in.rec == nil {
		in.notice(NoticeRecognitionUnsupported)
		return ErrUnsupported
	}

	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return ErrClosed
	}
	if in.state == InputListening || in.starting {
		in.mu.Unlock()
		return nil
	}
	in.gen++
	gen := in.gen
	in.starting = true
	in.mu.Unlock()

	if err := in.rec.Start(in.cfg, in.callbacks(gen)); err != nil {
		in.mu.Lock()
		if in.gen == gen {
			in.starting = false
		}
		in.mu.Unlock()
		in.logger.Error("recognition start failed", "error", err)
		return fmt.Errorf("voice: start recognition: %w", err)
	}
	return nil
}

// Stop asks the platform to end the active session. The transition to
// Idle happens when the platform reports the end.
func (in *Input) Stop() {
	in.mu.Lock()
	active := in.state == InputListening || in.starting
	in.mu.Unlock()

	if active && in.rec != nil {
		in.rec.Stop()
	}
}

// Close tears the adapter down. Later platform callbacks are ignored.
func (in *Input) Close() {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.closed = true
	active := in.state == InputListening || in.starting
	in.starting = false
	in.gen++
	notify := in.setStateLocked(InputIdle)
	in.mu.Unlock()

	if active && in.rec != nil {
		in.rec.Stop()
	}
	notify()
}

func (in *Input) callbacks(gen uint64) RecognitionCallbacks {
	return RecognitionCallbacks{
		OnStart: func() {
			in.mu.Lock()
			if in.closed || in.gen != gen {
				in.mu.Unlock()
				return
			}
			in.starting = false
			notify := in.setStateLocked(InputListening)
			in.mu.Unlock()
			in.logger.Debug("listening")
			notify()
		},
		OnResult: func(transcript string) {
			in.mu.Lock()
			closed := in.closed
			in.mu.Unlock()

			transcript = strings.TrimSpace(transcript)
			if closed || transcript == "" || in.field == nil {
				return
			}
			in.logger.Debug("transcript", "chars", len(transcript))
			in.field.AppendQuery(transcript)
		},
		OnEnd: func() {
			in.finish(gen)
		},
		OnError: func(reason string) {
			in.logger.Warn("recognition error", "reason", reason)
			in.finish(gen)
		},
	}
}

func (in *Input) finish(gen uint64) {
	in.mu.Lock()
	if in.closed || in.gen != gen {
		in.mu.Unlock()
		return
	}
	in.starting = false
	notify := in.setStateLocked(InputIdle)
	in.mu.Unlock()
	notify()
}

// setStateLocked updates the state and returns a function that runs the
// observer outside the lock.
func (in *Input) setStateLocked(s InputState) func() {
	if in.state == s {
		return func() {}
	}
	in.state = s
	fn := in.onState
	if fn == nil {
		return func() {}
	}
	return func() { fn(s) }
}
