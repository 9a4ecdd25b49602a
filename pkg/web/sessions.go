package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nyaya/pkg/hub"
	"github.com/teslashibe/go-nyaya/pkg/inference"
	"github.com/teslashibe/go-nyaya/pkg/law"
	"github.com/teslashibe/go-nyaya/pkg/markup"
	"github.com/teslashibe/go-nyaya/pkg/session"
	"github.com/teslashibe/go-nyaya/pkg/voice"
)

// Session is one browser's query session: the controller, its websocket
// hub and, once the browser has reported its capabilities, the voice
// adapters bridged to the browser's speech engines.
type Session struct {
	ID        string
	CreatedAt time.Time

	ctrl   *session.Controller
	hub    *hub.Hub
	rec    *BrowserRecognizer
	synth  *BrowserSynthesizer
	logger *slog.Logger

	mu     sync.Mutex
	input  *voice.Input
	output *voice.Output
}

// View is the JSON form of a session.
type View struct {
	session.Snapshot
	ID       string          `json:"id"`
	Document markup.Document `json:"document"`
	HTML     string          `json:"html"`
	Voice    VoiceView       `json:"voice"`
}

// VoiceView reports the voice adapters. Connected is false until the
// browser has opened the websocket and reported its capabilities.
type VoiceView struct {
	Connected bool   `json:"connected"`
	Input     string `json:"input"`
	Output    string `json:"output"`
}

// Controller returns the session's controller.
func (s *Session) Controller() *session.Controller { return s.ctrl }

// View renders the current state.
func (s *Session) View() View {
	snap := s.ctrl.Snapshot()
	doc := snap.Document()
	return View{
		Snapshot: snap,
		ID:       s.ID,
		Document: doc,
		HTML:     markup.HTML(doc),
		Voice:    s.voiceView(),
	}
}

func (s *Session) voiceView() VoiceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := VoiceView{Input: voice.InputIdle.String(), Output: voice.OutputIdle.String()}
	if s.input != nil {
		v.Connected = true
		v.Input = s.input.State().String()
		v.Output = s.output.State().String()
	}
	return v
}

// Input returns the voice input adapter, or nil before the browser has
// connected.
func (s *Session) Input() *voice.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Output returns the voice output adapter, or nil before the browser has
// connected.
func (s *Session) Output() *voice.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

func (s *Session) send(typ string, payload any) error {
	return s.hub.Send(typ, payload)
}

func (s *Session) notice(message string) {
	if err := s.send(FrameNotice, map[string]string{"message": message}); err != nil {
		s.logger.Warn("send notice", "error", err)
	}
}

func (s *Session) pushSnapshot(session.Snapshot) {
	if err := s.send(FrameSnapshot, s.View()); err != nil {
		s.logger.Warn("send snapshot", "error", err)
	}
}

// attachVoice builds the voice adapters for the capabilities the browser
// reported. A missing capability yields an inert adapter that answers
// with the unsupported notice.
func (s *Session) attachVoice(caps Capabilities) {
	var rec voice.Recognizer
	if caps.Recognition {
		rec = s.rec
	}
	var synth voice.Synthesizer
	if caps.Synthesis {
		synth = s.synth
	}

	in := voice.NewInput(rec, s.ctrl,
		voice.WithInputLogger(s.logger),
		voice.WithInputNotice(s.notice),
	)
	in.OnStateChange(func(st voice.InputState) {
		_ = s.send(FrameInputState, map[string]string{"state": st.String()})
	})

	out := voice.NewOutput(synth,
		voice.WithOutputLogger(s.logger),
		voice.WithOutputNotice(s.notice),
	)
	out.OnStateChange(func(st voice.OutputState) {
		_ = s.send(FrameOutputState, map[string]string{"state": st.String()})
	})

	s.mu.Lock()
	oldIn, oldOut := s.input, s.output
	s.input, s.output = in, out
	s.mu.Unlock()

	if oldIn != nil {
		oldIn.Close()
		oldOut.Close()
	}
	s.logger.Info("voice attached", "recognition", caps.Recognition, "synthesis", caps.Synthesis)
}

// handleFrame dispatches one browser frame.
func (s *Session) handleFrame(_ *hub.Client, frame []byte) {
	env, err := hub.Decode(frame)
	if err != nil {
		s.logger.Warn("bad frame", "error", err)
		return
	}

	switch env.Type {
	case FrameCapabilities:
		var caps Capabilities
		if err := env.Payload(&caps); err != nil {
			s.logger.Warn("bad capabilities", "error", err)
			return
		}
		s.attachVoice(caps)
	case FrameVoices:
		var voices []voice.Voice
		if err := env.Payload(&voices); err != nil {
			s.logger.Warn("bad voice list", "error", err)
			return
		}
		s.synth.SetVoices(voices)
	case FrameRecognitionStarted, FrameRecognitionResult, FrameRecognitionEnd, FrameRecognitionError:
		s.rec.handle(env)
	case FrameSynthesisStarted, FrameSynthesisEnd, FrameSynthesisError:
		s.synth.handle(env)
	default:
		s.logger.Debug("ignoring frame", "type", env.Type)
	}
}

// ToggleInput toggles dictation.
func (s *Session) ToggleInput() error {
	in := s.Input()
	if in == nil {
		return errVoiceNotConnected
	}
	return in.Toggle()
}

// ToggleOutput toggles read-aloud of the current response.
func (s *Session) ToggleOutput() error {
	out := s.Output()
	if out == nil {
		return errVoiceNotConnected
	}
	return out.Toggle(s.ctrl.ReadAloudText(), s.ctrl.State().OutputLanguage)
}

func (s *Session) close() {
	s.mu.Lock()
	in, out := s.input, s.output
	s.mu.Unlock()
	if in != nil {
		in.Close()
		out.Close()
	}
	s.ctrl.Close()
	s.hub.Close()
}

// Registry holds the live sessions.
type Registry struct {
	provider inference.Provider
	opts     []session.Option
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry whose sessions call provider.
func NewRegistry(provider inference.Provider, logger *slog.Logger, opts ...session.Option) *Registry {
	return &Registry{
		provider: provider,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with fresh selections.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	logger := r.logger.With("session", id)

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		logger:    logger,
	}
	s.ctrl = session.New(r.provider, append([]session.Option{session.WithLogger(logger)}, r.opts...)...)
	s.hub = hub.New(id,
		hub.WithLogger(logger),
		hub.WithOnMessage(s.handleFrame),
		hub.WithOnConnect(func(*hub.Client) { s.pushSnapshot(session.Snapshot{}) }),
	)
	s.rec = NewBrowserRecognizer(s.send, logger)
	s.synth = NewBrowserSynthesizer(s.send, logger)

	s.ctrl.OnChange(s.pushSnapshot)
	s.ctrl.OnResponseChange(func() {
		if out := s.Output(); out != nil {
			out.ResponseChanged()
		}
	})

	go s.hub.Run()

	r.mu.Lock()
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()
	logger.Info("session created", "sessions", count)
	return s
}

// Get returns the session with id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove tears down the session with id. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	r.logger.Info("session closed", "session", id, "sessions", count)
	return true
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

// Options is the reference data a front end needs to build its controls.
type Options struct {
	Laws      []law.Option `json:"laws"`
	Audiences []string     `json:"audiences"`
	Focuses   []string     `json:"focuses"`
	Languages []string     `json:"languages"`
}

func options() Options {
	return Options{
		Laws:      law.Laws(),
		Audiences: law.Audiences(),
		Focuses:   law.Focuses(),
		Languages: law.Languages(),
	}
}
