// Package session is the top-level controller for one user's legal query.
// It owns the query selections, runs the submit cycle against a generative
// provider and tracks the response, error, loading and copy state that a
// front end renders.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-nyaya/pkg/inference"
	"github.com/teslashibe/go-nyaya/pkg/law"
	"github.com/teslashibe/go-nyaya/pkg/markup"
	"github.com/teslashibe/go-nyaya/pkg/query"
)

// ErrorPrefix starts every message shown for a failed API call.
const ErrorPrefix = "Failed to get response from AI. "

// DefaultCopyAck is how long the copy acknowledgement stays visible.
const DefaultCopyAck = 2 * time.Second

var (
	// ErrNothingToCopy is returned by Copy when there is no response.
	ErrNothingToCopy = errors.New("session: no response to copy")

	// ErrSuperseded is returned by a Submit whose result was discarded
	// because a newer submission started while it was in flight.
	ErrSuperseded = errors.New("session: superseded by a newer submission")
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

// WriteAll calls f.
func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// Snapshot is the renderable state of a session.
type Snapshot struct {
	State    query.State `json:"state"`
	Response string      `json:"response"`
	Error    string      `json:"error,omitempty"`
	Loading  bool        `json:"loading"`
	Copied   bool        `json:"copied"`
}

// Document parses the response into display blocks.
func (s Snapshot) Document() markup.Document {
	return markup.Parse(s.Response)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithModel sets the model name passed with every request. Empty means the
// provider's default.
func WithModel(model string) Option {
	return func(c *Controller) { c.model = model }
}

// WithCopyAck sets how long the copy acknowledgement stays visible.
func WithCopyAck(d time.Duration) Option {
	return func(c *Controller) { c.copyAck = d }
}

// WithState replaces the initial selections.
func WithState(s query.State) Option {
	return func(c *Controller) { c.state = s.Clone() }
}

// Controller owns one session's query state.
type Controller struct {
	provider inference.Provider
	model    string
	copyAck  time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	state    query.State
	response string
	errMsg   string
	loading  bool
	copied   bool
	seq      uint64 // latest submission
	copySeq  uint64
	ackTimer *time.Timer
	closed   bool

	observers     []func(Snapshot)
	responseHooks []func()
}

// New creates a controller that sends prompts to provider.
func New(provider inference.Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		copyAck:  DefaultCopyAck,
		logger:   slog.Default(),
		state:    query.NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "session")
	return c
}

// OnChange registers fn to receive a snapshot after every change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// OnResponseChange registers fn to run whenever the response text is
// replaced or cleared.
func (c *Controller) OnResponseChange(fn func()) {
	c.mu.Lock()
	c.responseHooks = append(c.responseHooks, fn)
	c.mu.Unlock()
}

// Snapshot returns the current renderable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns a copy of the current selections.
func (c *Controller) State() query.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// ToggleLaw selects or deselects a legal code.
func (c *Controller) ToggleLaw(l law.Law) error {
	return c.mutate(func(s *query.State) error { return s.ToggleLaw(l) })
}

// SetAudience selects the audience tier.
func (c *Controller) SetAudience(audience string) error {
	return c.mutate(func(s *query.State) error { return s.SetAudience(audience) })
}

// SetQueryFocus selects the answer focus.
func (c *Controller) SetQueryFocus(focus string) error {
	return c.mutate(func(s *query.State) error { return s.SetQueryFocus(focus) })
}

// SetOutputLanguage selects the response language.
func (c *Controller) SetOutputLanguage(language string) error {
	return c.mutate(func(s *query.State) error { return s.SetOutputLanguage(language) })
}

// SetQuery replaces the query text.
func (c *Controller) SetQuery(q string) {
	_ = c.mutate(func(s *query.State) error {
		s.SetQuery(q)
		return nil
	})
}

// AppendQuery appends dictated text to the query.
func (c *Controller) AppendQuery(text string) {
	_ = c.mutate(func(s *query.State) error {
		s.AppendQuery(text)
		return nil
	})
}

func (c *Controller) mutate(fn func(*query.State) error) error {
	c.mu.Lock()
	next := c.state.Clone()
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	snap := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()

	notify(observers, snap)
	return nil
}

// Submit validates the selections, sends the composed prompt and records
// the outcome. Loading is cleared whether the call succeeds or fails.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.state.Validate(); err != nil {
		c.errMsg = query.ValidationMessage
		snap := c.snapshotLocked()
		observers := c.observers
		c.mu.Unlock()
		notify(observers, snap)
		return err
	}

	c.seq++
	seq := c.seq
	st := c.state.Clone()
	cleared := c.response != ""
	c.loading = true
	c.response = ""
	c.errMsg = ""
	snap := c.snapshotLocked()
	observers, hooks := c.observers, c.responseHooks
	c.mu.Unlock()

	notify(observers, snap)
	if cleared {
		run(hooks)
	}

	prompt := query.Compose(st)
	start := time.Now()
	resp, err := c.provider.Generate(ctx, &inference.GenerateRequest{
		Prompt: prompt,
		Model:  c.model,
	})

	c.mu.Lock()
	if seq != c.seq || c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded result", "seq", seq)
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.errMsg = ErrorPrefix + inference.Message(err)
	} else {
		// drop a validation message raised while this call was in flight
		c.errMsg = ""
		c.response = resp.Text
	}
	changed := c.response != ""
	snap = c.snapshotLocked()
	observers, hooks = c.observers, c.responseHooks
	c.mu.Unlock()

	notify(observers, snap)
	if changed {
		run(hooks)
	}

	if err != nil {
		c.logger.Error("generate failed", "error", err, "latency_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("session: generate: %w", err)
	}
	c.logger.Info("response received",
		"laws", len(st.SelectedLaws),
		"language", st.OutputLanguage,
		"chars", len(resp.Text),
		"latency_ms", time.Since(start).Milliseconds())
	return nil
}

// Copy writes the response to cb and shows the acknowledgement for the
// configured duration. A nil cb only records the acknowledgement, for
// front ends that perform the clipboard write themselves.
func (c *Controller) Copy(cb Clipboard) error {
	c.mu.Lock()
	text := c.response
	c.mu.Unlock()
	if text == "" {
		return ErrNothingToCopy
	}

	if cb != nil {
		if err := cb.WriteAll(text); err != nil {
			c.logger.Error("clipboard write failed", "error", err)
			return fmt.Errorf("session: copy: %w", err)
		}
	}

	c.mu.Lock()
	c.copySeq++
	id := c.copySeq
	c.copied = true
	if c.ackTimer != nil {
		c.ackTimer.Stop()
	}
	c.ackTimer = time.AfterFunc(c.copyAck, func() { c.revertCopied(id) })
	snap := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()

	notify(observers, snap)
	return nil
}

func (c *Controller) revertCopied(id uint64) {
	c.mu.Lock()
	if c.closed || c.copySeq != id {
		c.mu.Unlock()
		return
	}
	c.copied = false
	snap := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()
	notify(observers, snap)
}

// ReadAloudText returns the response as plain text for speech.
func (c *Controller) ReadAloudText() string {
	c.mu.Lock()
	text := c.response
	c.mu.Unlock()
	return markup.PlainText(markup.Parse(text))
}

// Close stops pending timers and discards any in-flight result.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.ackTimer != nil {
		c.ackTimer.Stop()
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state.Clone(),
		Response: c.response,
		Error:    c.errMsg,
		Loading:  c.loading,
		Copied:   c.copied,
	}
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

func run(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}
