package voice

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/teslashibe/go-nyaya/pkg/law"
)

// OutputState is the observable state of read-aloud.
type OutputState int

const (
	OutputIdle OutputState = iota
	OutputSpeaking
)

func (s OutputState) String() string {
	if s == OutputSpeaking {
		return "speaking"
	}
	return "idle"
}

// OutputOption configures an Output.
type OutputOption func(*Output)

// WithOutputLogger sets the structured logger.
func WithOutputLogger(l *slog.Logger) OutputOption {
	return func(o *Output) { o.logger = l }
}

// WithOutputNotice sets the function that shows user-visible notices.
func WithOutputNotice(fn func(message string)) OutputOption {
	return func(o *Output) { o.notice = fn }
}

// Output reads response text aloud.
type Output struct {
	synth  Synthesizer
	logger *slog.Logger
	notice func(string)

	mu         sync.Mutex
	state      OutputState
	gen        uint64
	pending    *Utterance // waiting for the voice list
	pendingGen uint64
	closed     bool
	onState    func(OutputState)
}

// NewOutput creates a read-aloud adapter. A nil synthesizer yields an
// inert adapter that only reports ErrUnsupported.
func NewOutput(synth Synthesizer, opts ...OutputOption) *Output {
	o := &Output{
		synth:  synth,
		logger: slog.Default(),
		notice: func(string) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "voice.output")
	if synth != nil {
		synth.OnVoicesChanged(o.voicesChanged)
	}
	return o
}

// Supported reports whether a synthesizer is available.
func (o *Output) Supported() bool { return o.synth != nil }

// State returns the current state.
func (o *Output) State() OutputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// OnStateChange registers fn to run after every state transition.
func (o *Output) OnStateChange(fn func(OutputState)) {
	o.mu.Lock()
	o.onState = fn
	o.mu.Unlock()
}

// Toggle stops speech when speaking and otherwise starts reading text in
// the given output language.
func (o *Output) Toggle(text, language string) error {
	if o.State() == OutputSpeaking {
		o.Stop()
		return nil
	}
	return o.Speak(text, language)
}

// Speak reads text aloud in the voice best matching language. Any
// utterance already in progress is cancelled first.
func (o *Output) Speak(text, language string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if o.synth == nil {
		o.notice(NoticeSynthesisUnsupported)
		return ErrUnsupported
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	wasSpeaking := o.state == OutputSpeaking
	o.gen++
	gen := o.gen
	o.pending = nil
	notify := o.setStateLocked(OutputSpeaking)
	o.mu.Unlock()

	if wasSpeaking {
		o.synth.Cancel()
	}
	notify()

	u := Utterance{Text: text, Locale: law.Locale(language)}
	voices := o.synth.Voices()
	if len(voices) == 0 {
		o.mu.Lock()
		if o.gen == gen {
			o.pending = &u
			o.pendingGen = gen
		}
		o.mu.Unlock()
		o.logger.Debug("voice list empty, deferring", "locale", u.Locale)
		return nil
	}
	return o.dispatch(gen, u, voices)
}

// Stop cancels speech immediately and returns to Idle.
func (o *Output) Stop() {
	o.cancel(false)
}

// ResponseChanged must be called whenever the text being read is replaced.
// Stale audio never outlives its source text.
func (o *Output) ResponseChanged() {
	o.cancel(false)
}

// Close tears the adapter down. Later platform callbacks are ignored.
func (o *Output) Close() {
	o.cancel(true)
}

func (o *Output) cancel(closing bool) {
	o.mu.Lock()
	if closing {
		o.closed = true
	}
	active := o.state == OutputSpeaking
	o.gen++
	o.pending = nil
	notify := o.setStateLocked(OutputIdle)
	o.mu.Unlock()

	if active && o.synth != nil {
		o.synth.Cancel()
	}
	notify()
}

func (o *Output) voicesChanged() {
	o.mu.Lock()
	if o.pending == nil || o.closed {
		o.mu.Unlock()
		return
	}
	u := *o.pending
	gen := o.pendingGen
	o.pending = nil
	o.mu.Unlock()

	if err := o.dispatch(gen, u, o.synth.Voices()); err != nil {
		o.logger.Error("deferred speech failed", "error", err)
	}
}

func (o *Output) dispatch(gen uint64, u Utterance, voices []Voice) error {
	u.Voice = SelectVoice(voices, u.Locale)
	if u.Voice == nil {
		o.logger.Debug("no voice for locale, using platform default", "locale", u.Locale)
	}

	o.mu.Lock()
	current := o.gen == gen && !o.closed
	o.mu.Unlock()
	if !current {
		return nil
	}

	if err := o.synth.Speak(u, o.callbacks(gen)); err != nil {
		o.finish(gen)
		return fmt.Errorf("voice: speak: %w", err)
	}

	// A stop that raced the issue above cancelled before the platform had
	// the utterance; cancel again so it does not play while we read Idle.
	o.mu.Lock()
	stale := o.gen != gen || o.closed
	o.mu.Unlock()
	if stale {
		o.logger.Debug("utterance superseded while issuing", "gen", gen)
		o.synth.Cancel()
	}
	return nil
}

func (o *Output) callbacks(gen uint64) SynthesisCallbacks {
	return SynthesisCallbacks{
		OnStart: func() {
			o.logger.Debug("speaking", "gen", gen)
		},
		OnEnd: func() {
			o.finish(gen)
		},
		OnError: func(reason string) {
			o.logger.Warn("synthesis error", "reason", reason)
			o.finish(gen)
		},
	}
}

func (o *Output) finish(gen uint64) {
	o.mu.Lock()
	if o.closed || o.gen != gen {
		o.mu.Unlock()
		return
	}
	notify := o.setStateLocked(OutputIdle)
	o.mu.Unlock()
	notify()
}

func (o *Output) setStateLocked(s OutputState) func() {
	if o.state == s {
		return func() {}
	}
	o.state = s
	fn := o.onState
	if fn == nil {
		return func() {}
	}
	return func() { fn(s) }
}

// SelectVoice picks the voice for locale: an exact locale match first,
// then any voice of the same language, else nil for the platform default.
func SelectVoice(voices []Voice, locale string) *Voice {
	want := normalizeLocale(locale)
	lang, _, _ := strings.Cut(want, "-")

	var fallback *Voice
	for i := range voices {
		have := normalizeLocale(voices[i].Lang)
		if have == want {
			v := voices[i]
			return &v
		}
		if fallback == nil {
			if l, _, _ := strings.Cut(have, "-"); l == lang {
				v := voices[i]
				fallback = &v
			}
		}
	}
	return fallback
}

func normalizeLocale(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}
