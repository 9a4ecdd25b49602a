package voice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVoices = []Voice{
	{Name: "Samantha", Lang: "en-US", Default: true},
	{Name: "Daniel", Lang: "en-GB"},
	{Name: "Lekha", Lang: "te_IN"},
}

func TestOutputSpeak(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Speak("Section 173 of BNSS", "Telugu"))
	assert.Equal(t, OutputSpeaking, out.State())

	us := synth.Utterances()
	require.Len(t, us, 1)
	assert.Equal(t, "Section 173 of BNSS", us[0].Text)
	assert.Equal(t, "te-IN", us[0].Locale)
	require.NotNil(t, us[0].Voice)
	assert.Equal(t, "Lekha", us[0].Voice.Name)

	synth.EmitStart()
	assert.Equal(t, OutputSpeaking, out.State())
	synth.EmitEnd()
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputStopWhileSpeaking(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Speak("text", "English"))
	synth.EmitStart()
	out.Stop()

	assert.Equal(t, OutputIdle, out.State(), "stop must not wait for the platform")
	assert.Equal(t, 1, synth.CallCount("Cancel"))

	synth.EmitEnd()
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputStopWhenIdle(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	out.Stop()
	assert.Equal(t, 0, synth.CallCount("Cancel"))
}

func TestOutputErrorReturnsToIdle(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Speak("text", "English"))
	synth.EmitError("synthesis-failed")
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputSpeakRestartsWhileSpeaking(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Speak("first", "English"))
	first := synth.Callbacks()
	require.NoError(t, out.Speak("second", "English"))

	assert.Equal(t, 1, synth.CallCount("Cancel"))
	assert.Equal(t, 2, synth.CallCount("Speak"))

	first.OnEnd()
	assert.Equal(t, OutputSpeaking, out.State(), "the cancelled utterance must not end the new one")

	synth.EmitEnd()
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputDefersUntilVoicesLoad(t *testing.T) {
	synth := NewMockSynthesizer()
	out := NewOutput(synth)

	require.NoError(t, out.Speak("text", "English"))
	assert.Equal(t, OutputSpeaking, out.State())
	assert.Equal(t, 0, synth.CallCount("Speak"))

	synth.SetVoices(testVoices...)
	us := synth.Utterances()
	require.Len(t, us, 1)
	require.NotNil(t, us[0].Voice)
	assert.Equal(t, "Samantha", us[0].Voice.Name)

	synth.SetVoices(testVoices...)
	assert.Equal(t, 1, synth.CallCount("Speak"), "a voice list change must not repeat the utterance")
}

func TestOutputStopCancelsDeferred(t *testing.T) {
	synth := NewMockSynthesizer()
	out := NewOutput(synth)

	require.NoError(t, out.Speak("text", "English"))
	out.Stop()
	synth.SetVoices(testVoices...)

	assert.Equal(t, 0, synth.CallCount("Speak"))
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputResponseChanged(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Speak("old answer", "English"))
	out.ResponseChanged()

	assert.Equal(t, OutputIdle, out.State())
	assert.Equal(t, 1, synth.CallCount("Cancel"))
}

func TestOutputStopDuringIssueCancelsAgain(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	// The response changes while the utterance is being handed to the
	// platform, before the platform has queued it.
	synth.SpeakFunc = func(Utterance, SynthesisCallbacks) error {
		out.ResponseChanged()
		return nil
	}

	require.NoError(t, out.Speak("old answer", "English"))
	assert.Equal(t, OutputIdle, out.State())
	assert.Equal(t, 2, synth.CallCount("Cancel"))

	calls := synth.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "Cancel", calls[len(calls)-1].Method)
}

func TestOutputToggle(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	require.NoError(t, out.Toggle("text", "English"))
	assert.Equal(t, OutputSpeaking, out.State())
	require.NoError(t, out.Toggle("text", "English"))
	assert.Equal(t, OutputIdle, out.State())
	assert.Equal(t, 1, synth.CallCount("Speak"))
}

func TestOutputEmptyText(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	assert.ErrorIs(t, out.Speak("  ", "English"), ErrEmptyText)
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputUnsupported(t *testing.T) {
	var notices []string
	out := NewOutput(nil, WithOutputNotice(func(m string) { notices = append(notices, m) }))

	assert.False(t, out.Supported())
	assert.ErrorIs(t, out.Speak("text", "English"), ErrUnsupported)
	assert.Equal(t, []string{NoticeSynthesisUnsupported}, notices)
	out.Stop()
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputSpeakFailure(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	synth.SpeakFunc = func(Utterance, SynthesisCallbacks) error {
		return errors.New("audio busy")
	}
	out := NewOutput(synth)

	err := out.Speak("text", "English")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio busy")
	assert.Equal(t, OutputIdle, out.State())
}

func TestOutputClose(t *testing.T) {
	synth := NewMockSynthesizer(testVoices...)
	out := NewOutput(synth)

	var states []OutputState
	out.OnStateChange(func(s OutputState) { states = append(states, s) })

	require.NoError(t, out.Speak("text", "English"))
	out.Close()

	assert.Equal(t, 1, synth.CallCount("Cancel"))
	assert.ErrorIs(t, out.Speak("text", "English"), ErrClosed)
	assert.Equal(t, []OutputState{OutputSpeaking, OutputIdle}, states)
}

func TestSelectVoice(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		locale string
		want   string
	}{
		{"exact", testVoices, "en-GB", "Daniel"},
		{"underscore normalized", testVoices, "te-IN", "Lekha"},
		{"case insensitive", testVoices, "EN-us", "Samantha"},
		{"language prefix", testVoices, "en-IN", "Samantha"},
		{"no match", testVoices, "hi-IN", ""},
		{"empty list", nil, "en-US", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := SelectVoice(tt.voices, tt.locale)
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.Name)
		})
	}
}
