package web

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nyaya/pkg/hub"
	"github.com/teslashibe/go-nyaya/pkg/voice"
)

// Frame types of the speech bridge. Commands flow server to browser,
// events browser to server.
const (
	// server -> browser
	FrameSnapshot         = "snapshot"
	FrameNotice           = "notice"
	FrameInputState       = "voice.input"
	FrameOutputState      = "voice.output"
	FrameRecognitionStart = "recognition.start"
	FrameRecognitionStop  = "recognition.stop"
	FrameSynthesisSpeak   = "synthesis.speak"
	FrameSynthesisCancel  = "synthesis.cancel"

	// browser -> server
	FrameCapabilities       = "capabilities"
	FrameVoices             = "voices"
	FrameRecognitionStarted = "recognition.started"
	FrameRecognitionResult  = "recognition.result"
	FrameRecognitionEnd     = "recognition.end"
	FrameRecognitionError   = "recognition.error"
	FrameSynthesisStarted   = "synthesis.started"
	FrameSynthesisEnd       = "synthesis.end"
	FrameSynthesisError     = "synthesis.error"
)

// Capabilities is what the browser reports about its speech engines.
type Capabilities struct {
	Recognition bool `json:"recognition"`
	Synthesis   bool `json:"synthesis"`
}

// sender delivers one typed frame to the browser.
type sender func(typ string, payload any) error

// bridgeEvent is the payload of every browser event frame.
type bridgeEvent struct {
	ID         string `json:"id"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

type recognitionCommand struct {
	ID string `json:"id"`
	voice.RecognitionConfig
}

type speakCommand struct {
	ID string `json:"id"`
	voice.Utterance
}

type idPayload struct {
	ID string `json:"id,omitempty"`
}

// BrowserRecognizer drives the browser's SpeechRecognition over the
// session websocket. Each Start gets an id the browser echoes back, so
// events from an old recognition object reach only its own callbacks.
type BrowserRecognizer struct {
	send   sender
	logger *slog.Logger

	mu      sync.Mutex
	current string
	cbs     map[string]voice.RecognitionCallbacks
}

var _ voice.Recognizer = (*BrowserRecognizer)(nil)

// NewBrowserRecognizer creates a recognizer that sends commands with send.
func NewBrowserRecognizer(send sender, logger *slog.Logger) *BrowserRecognizer {
	return &BrowserRecognizer{
		send:   send,
		logger: logger,
		cbs:    make(map[string]voice.RecognitionCallbacks),
	}
}

// Start asks the browser to begin recognising.
func (r *BrowserRecognizer) Start(cfg voice.RecognitionConfig, cb voice.RecognitionCallbacks) error {
	id := uuid.NewString()
	r.mu.Lock()
	r.current = id
	r.cbs[id] = cb
	r.mu.Unlock()

	if err := r.send(FrameRecognitionStart, recognitionCommand{ID: id, RecognitionConfig: cfg}); err != nil {
		r.mu.Lock()
		delete(r.cbs, id)
		r.mu.Unlock()
		return err
	}
	return nil
}

// Stop asks the browser to end the current session.
func (r *BrowserRecognizer) Stop() {
	r.mu.Lock()
	id := r.current
	r.mu.Unlock()
	if err := r.send(FrameRecognitionStop, idPayload{ID: id}); err != nil {
		r.logger.Warn("send recognition stop", "error", err)
	}
}

// handle routes one browser recognition event to its session callbacks.
func (r *BrowserRecognizer) handle(env hub.Envelope) {
	var ev bridgeEvent
	if err := env.Payload(&ev); err != nil {
		r.logger.Warn("bad recognition event", "error", err)
		return
	}

	r.mu.Lock()
	cb, ok := r.cbs[ev.ID]
	if ok && (env.Type == FrameRecognitionEnd || env.Type == FrameRecognitionError) {
		delete(r.cbs, ev.ID)
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Debug("event for unknown recognition", "id", ev.ID, "type", env.Type)
		return
	}

	switch env.Type {
	case FrameRecognitionStarted:
		if cb.OnStart != nil {
			cb.OnStart()
		}
	case FrameRecognitionResult:
		if cb.OnResult != nil {
			cb.OnResult(ev.Transcript)
		}
	case FrameRecognitionEnd:
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	case FrameRecognitionError:
		if cb.OnError != nil {
			cb.OnError(ev.Error)
		}
	}
}

// BrowserSynthesizer drives the browser's speechSynthesis over the
// session websocket.
type BrowserSynthesizer struct {
	send   sender
	logger *slog.Logger

	mu       sync.Mutex
	voices   []voice.Voice
	onVoices func()
	cbs      map[string]voice.SynthesisCallbacks
}

var _ voice.Synthesizer = (*BrowserSynthesizer)(nil)

// NewBrowserSynthesizer creates a synthesizer that sends commands with send.
func NewBrowserSynthesizer(send sender, logger *slog.Logger) *BrowserSynthesizer {
	return &BrowserSynthesizer{
		send:   send,
		logger: logger,
		cbs:    make(map[string]voice.SynthesisCallbacks),
	}
}

// Voices returns the last voice list the browser reported.
func (s *BrowserSynthesizer) Voices() []voice.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]voice.Voice(nil), s.voices...)
}

// OnVoicesChanged registers fn for voice list updates.
func (s *BrowserSynthesizer) OnVoicesChanged(fn func()) {
	s.mu.Lock()
	s.onVoices = fn
	s.mu.Unlock()
}

// SetVoices records a voice list reported by the browser.
func (s *BrowserSynthesizer) SetVoices(voices []voice.Voice) {
	s.mu.Lock()
	s.voices = voices
	fn := s.onVoices
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Speak asks the browser to speak u.
func (s *BrowserSynthesizer) Speak(u voice.Utterance, cb voice.SynthesisCallbacks) error {
	id := uuid.NewString()
	s.mu.Lock()
	s.cbs[id] = cb
	s.mu.Unlock()

	if err := s.send(FrameSynthesisSpeak, speakCommand{ID: id, Utterance: u}); err != nil {
		s.mu.Lock()
		delete(s.cbs, id)
		s.mu.Unlock()
		return err
	}
	return nil
}

// Cancel stops all browser speech.
func (s *BrowserSynthesizer) Cancel() {
	if err := s.send(FrameSynthesisCancel, nil); err != nil {
		s.logger.Warn("send synthesis cancel", "error", err)
	}
}

func (s *BrowserSynthesizer) handle(env hub.Envelope) {
	var ev bridgeEvent
	if err := env.Payload(&ev); err != nil {
		s.logger.Warn("bad synthesis event", "error", err)
		return
	}

	s.mu.Lock()
	cb, ok := s.cbs[ev.ID]
	if ok && env.Type != FrameSynthesisStarted {
		delete(s.cbs, ev.ID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	switch env.Type {
	case FrameSynthesisStarted:
		if cb.OnStart != nil {
			cb.OnStart()
		}
	case FrameSynthesisEnd:
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	case FrameSynthesisError:
		if cb.OnError != nil {
			cb.OnError(ev.Error)
		}
	}
}
