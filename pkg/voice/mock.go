package voice

import (
	"sync"
	"time"
)

// Compile-time interface checks.
var (
	_ Recognizer  = (*MockRecognizer)(nil)
	_ Synthesizer = (*MockSynthesizer)(nil)
)

// MockCall records a call to a mock platform service.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// MockRecognizer is a scriptable Recognizer. Tests drive the session by
// calling the Emit helpers.
type MockRecognizer struct {
	// StartFunc overrides Start when set.
	StartFunc func(cfg RecognitionConfig, cb RecognitionCallbacks) error

	mu      sync.Mutex
	calls   []MockCall
	cb      RecognitionCallbacks
	lastCfg RecognitionConfig
}

// NewMockRecognizer returns a recognizer that accepts every Start.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

// Start records the session and keeps its callbacks.
func (m *MockRecognizer) Start(cfg RecognitionConfig, cb RecognitionCallbacks) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: "Start", Text: cfg.Locale, Time: time.Now()})
	m.cb = cb
	m.lastCfg = cfg
	fn := m.StartFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(cfg, cb)
	}
	return nil
}

// Stop records the call. The session ends only when EmitEnd is called.
func (m *MockRecognizer) Stop() {
	m.record("Stop", "")
}

// Callbacks returns the callbacks of the latest session.
func (m *MockRecognizer) Callbacks() RecognitionCallbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cb
}

// LastConfig returns the config of the latest session.
func (m *MockRecognizer) LastConfig() RecognitionConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCfg
}

// EmitStart fires OnStart on the latest session.
func (m *MockRecognizer) EmitStart() {
	if cb := m.Callbacks(); cb.OnStart != nil {
		cb.OnStart()
	}
}

// EmitResult fires OnResult on the latest session.
func (m *MockRecognizer) EmitResult(transcript string) {
	if cb := m.Callbacks(); cb.OnResult != nil {
		cb.OnResult(transcript)
	}
}

// EmitEnd fires OnEnd on the latest session.
func (m *MockRecognizer) EmitEnd() {
	if cb := m.Callbacks(); cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// EmitError fires OnError on the latest session.
func (m *MockRecognizer) EmitError(reason string) {
	if cb := m.Callbacks(); cb.OnError != nil {
		cb.OnError(reason)
	}
}

// Calls returns all recorded calls.
func (m *MockRecognizer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times method was called.
func (m *MockRecognizer) CallCount(method string) int {
	return countCalls(m.Calls(), method)
}

func (m *MockRecognizer) record(method, text string) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text, Time: time.Now()})
	m.mu.Unlock()
}

// MockSynthesizer is a scriptable Synthesizer.
type MockSynthesizer struct {
	// SpeakFunc overrides Speak when set.
	SpeakFunc func(u Utterance, cb SynthesisCallbacks) error

	mu         sync.Mutex
	voices     []Voice
	onVoices   func()
	calls      []MockCall
	utterances []Utterance
	cb         SynthesisCallbacks
}

// NewMockSynthesizer returns a synthesizer offering voices.
func NewMockSynthesizer(voices ...Voice) *MockSynthesizer {
	return &MockSynthesizer{voices: voices}
}

// Voices returns the configured voice list.
func (m *MockSynthesizer) Voices() []Voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Voice(nil), m.voices...)
}

// OnVoicesChanged keeps fn for SetVoices.
func (m *MockSynthesizer) OnVoicesChanged(fn func()) {
	m.mu.Lock()
	m.onVoices = fn
	m.mu.Unlock()
}

// SetVoices replaces the voice list and fires the change notification.
func (m *MockSynthesizer) SetVoices(voices ...Voice) {
	m.mu.Lock()
	m.voices = voices
	fn := m.onVoices
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Speak records the utterance and keeps its callbacks.
func (m *MockSynthesizer) Speak(u Utterance, cb SynthesisCallbacks) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: "Speak", Text: u.Text, Time: time.Now()})
	m.utterances = append(m.utterances, u)
	m.cb = cb
	fn := m.SpeakFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(u, cb)
	}
	return nil
}

// Cancel records the call.
func (m *MockSynthesizer) Cancel() {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: "Cancel", Time: time.Now()})
	m.mu.Unlock()
}

// Utterances returns every utterance passed to Speak.
func (m *MockSynthesizer) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.utterances...)
}

// Callbacks returns the callbacks of the latest utterance.
func (m *MockSynthesizer) Callbacks() SynthesisCallbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cb
}

// EmitStart fires OnStart on the latest utterance.
func (m *MockSynthesizer) EmitStart() {
	if cb := m.Callbacks(); cb.OnStart != nil {
		cb.OnStart()
	}
}

// EmitEnd fires OnEnd on the latest utterance.
func (m *MockSynthesizer) EmitEnd() {
	if cb := m.Callbacks(); cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// EmitError fires OnError on the latest utterance.
func (m *MockSynthesizer) EmitError(reason string) {
	if cb := m.Callbacks(); cb.OnError != nil {
		cb.OnError(reason)
	}
}

// Calls returns all recorded calls.
func (m *MockSynthesizer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times method was called.
func (m *MockSynthesizer) CallCount(method string) int {
	return countCalls(m.Calls(), method)
}

func countCalls(calls []MockCall, method string) int {
	n := 0
	for _, c := range calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
