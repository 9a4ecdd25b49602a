package voice

import "errors"

// Sentinel errors.
var (
	// ErrUnsupported is returned when the platform lacks the capability.
	ErrUnsupported = errors.New("voice: not supported on this platform")

	// ErrEmptyText is returned when there is nothing to read aloud.
	ErrEmptyText = errors.New("voice: nothing to speak")

	// ErrClosed is returned after the adapter has been torn down.
	ErrClosed = errors.New("voice: adapter closed")
)

// Notices shown to the user when a capability is missing.
const (
	NoticeRecognitionUnsupported = "Sorry, your browser does not support voice input."
	NoticeSynthesisUnsupported   = "Sorry, your browser does not support text-to-speech."
)

// RecognitionConfig configures one recognition session.
type RecognitionConfig struct {
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interim_results"`
	Locale         string `json:"locale"`
}

// DefaultRecognitionConfig is a single-shot, final-results-only session
// in US English.
func DefaultRecognitionConfig() RecognitionConfig {
	return RecognitionConfig{
		Continuous:     false,
		InterimResults: false,
		Locale:         "en-US",
	}
}

// RecognitionCallbacks receive platform recognition events. Any field may
// be nil.
type RecognitionCallbacks struct {
	OnStart  func()
	OnResult func(transcript string) // first alternative of the first result
	OnEnd    func()
	OnError  func(reason string)
}

// Recognizer is a platform speech-recognition service.
type Recognizer interface {
	// Start begins a session. Callbacks may fire before Start returns.
	Start(cfg RecognitionConfig, cb RecognitionCallbacks) error

	// Stop asks the platform to end the current session. The platform
	// reports completion through OnEnd.
	Stop()
}

// Voice is one synthesis voice offered by the platform.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Utterance is one piece of text to speak.
type Utterance struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
	Voice  *Voice `json:"voice,omitempty"`
}

// SynthesisCallbacks receive platform synthesis events. Any field may be
// nil.
type SynthesisCallbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(reason string)
}

// Synthesizer is a platform speech-synthesis service.
type Synthesizer interface {
	// Voices returns the voices currently known. The list may be empty
	// until the platform has loaded it.
	Voices() []Voice

	// OnVoicesChanged registers fn to run whenever the voice list changes.
	OnVoicesChanged(fn func())

	// Speak queues an utterance. Callbacks may fire before Speak returns.
	Speak(u Utterance, cb SynthesisCallbacks) error

	// Cancel stops all speech immediately.
	Cancel()
}
