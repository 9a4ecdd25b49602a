// Package voice wraps platform speech services into two small state
// machines: Input turns dictation into query text, Output reads a
// response aloud.
//
// The platform is injected. A Recognizer and a Synthesizer expose the
// start/stop/cancel operations and callback contracts that browser speech
// engines offer, so the adapters run the same against a real browser
// (see pkg/web) and against the fakes in this package.
//
// # Voice Input
//
//	Idle --Start--> (starting) --OnStart--> Listening --OnEnd/OnError--> Idle
//
// Results append to the query field whatever the state. A nil recognizer
// makes the adapter inert: Start reports ErrUnsupported through the
// notice callback and nothing else happens.
//
// # Voice Output
//
//	Idle --Speak--> Speaking --Stop/OnEnd/OnError/ResponseChanged--> Idle
//
// Voice selection waits for the platform's voice list when it is still
// empty. Stop cancels immediately without waiting for playback to end.
//
// Both adapters tag every platform session with a generation number and
// drop callbacks that belong to a superseded session.
package voice
