package voice

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeField struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeField) AppendQuery(text string) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
}

func (f *fakeField) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func TestInputSession(t *testing.T) {
	rec := NewMockRecognizer()
	field := &fakeField{}
	in := NewInput(rec, field)

	var states []InputState
	in.OnStateChange(func(s InputState) { states = append(states, s) })

	require.NoError(t, in.Start())
	assert.Equal(t, 1, rec.CallCount("Start"))
	assert.Equal(t, DefaultRecognitionConfig(), rec.LastConfig())
	assert.Equal(t, InputIdle, in.State(), "state changes only when the platform confirms")

	rec.EmitStart()
	assert.Equal(t, InputListening, in.State())

	rec.EmitResult("  what is an FIR  ")
	assert.Equal(t, []string{"what is an FIR"}, field.Texts())

	rec.EmitEnd()
	assert.Equal(t, InputIdle, in.State())
	assert.Equal(t, []InputState{InputListening, InputIdle}, states)
}

func TestInputStartIgnoredWhileActive(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	require.NoError(t, in.Start())
	require.NoError(t, in.Start(), "second start before confirmation")
	rec.EmitStart()
	require.NoError(t, in.Start(), "start while listening")

	assert.Equal(t, 1, rec.CallCount("Start"))
}

func TestInputErrorReturnsToIdle(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	require.NoError(t, in.Start())
	rec.EmitStart()
	rec.EmitError("no-speech")

	assert.Equal(t, InputIdle, in.State())
	require.NoError(t, in.Start(), "a new session may start after an error")
	assert.Equal(t, 2, rec.CallCount("Start"))
}

func TestInputStopWaitsForPlatform(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	require.NoError(t, in.Start())
	rec.EmitStart()
	in.Stop()

	assert.Equal(t, 1, rec.CallCount("Stop"))
	assert.Equal(t, InputListening, in.State())

	rec.EmitEnd()
	assert.Equal(t, InputIdle, in.State())
}

func TestInputStopWhenIdleIsNoop(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	in.Stop()
	assert.Equal(t, 0, rec.CallCount("Stop"))
}

func TestInputToggle(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	require.NoError(t, in.Toggle())
	assert.Equal(t, 1, rec.CallCount("Start"))
	rec.EmitStart()

	require.NoError(t, in.Toggle())
	assert.Equal(t, 1, rec.CallCount("Stop"))
}

func TestInputStaleCallbacksIgnored(t *testing.T) {
	rec := NewMockRecognizer()
	in := NewInput(rec, &fakeField{})

	require.NoError(t, in.Start())
	first := rec.Callbacks()
	first.OnStart()
	first.OnEnd()

	require.NoError(t, in.Start())
	rec.EmitStart()
	assert.Equal(t, InputListening, in.State())

	first.OnEnd()
	assert.Equal(t, InputListening, in.State(), "an old session must not end the new one")
	first.OnError("aborted")
	assert.Equal(t, InputListening, in.State())
}

func TestInputResultAppendsAfterEnd(t *testing.T) {
	rec := NewMockRecognizer()
	field := &fakeField{}
	in := NewInput(rec, field)

	require.NoError(t, in.Start())
	rec.EmitStart()
	rec.EmitEnd()
	rec.EmitResult("late result")

	assert.Equal(t, []string{"late result"}, field.Texts())
}

func TestInputEmptyResultIgnored(t *testing.T) {
	rec := NewMockRecognizer()
	field := &fakeField{}
	in := NewInput(rec, field)

	require.NoError(t, in.Start())
	rec.EmitResult("   ")
	assert.Empty(t, field.Texts())
}

func TestInputUnsupported(t *testing.T) {
	var notices []string
	in := NewInput(nil, &fakeField{}, WithInputNotice(func(m string) { notices = append(notices, m) }))

	assert.False(t, in.Supported())
	err := in.Start()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, []string{NoticeRecognitionUnsupported}, notices)
	assert.Equal(t, InputIdle, in.State())
}

func TestInputStartFailure(t *testing.T) {
	rec := NewMockRecognizer()
	rec.StartFunc = func(RecognitionConfig, RecognitionCallbacks) error {
		return errors.New("not-allowed")
	}
	in := NewInput(rec, &fakeField{})

	err := in.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-allowed")

	rec.StartFunc = nil
	require.NoError(t, in.Start(), "a failed start must not block the next one")
	assert.Equal(t, 2, rec.CallCount("Start"))
}

func TestInputClose(t *testing.T) {
	rec := NewMockRecognizer()
	field := &fakeField{}
	in := NewInput(rec, field)

	require.NoError(t, in.Start())
	rec.EmitStart()
	in.Close()

	assert.Equal(t, InputIdle, in.State())
	assert.Equal(t, 1, rec.CallCount("Stop"))

	rec.EmitResult("after close")
	rec.EmitStart()
	assert.Empty(t, field.Texts())
	assert.Equal(t, InputIdle, in.State())
	assert.ErrorIs(t, in.Start(), ErrClosed)
}

func TestInputCustomLocale(t *testing.T) {
	rec := NewMockRecognizer()
	cfg := DefaultRecognitionConfig()
	cfg.Locale = "te-IN"
	in := NewInput(rec, &fakeField{}, WithRecognitionConfig(cfg))

	require.NoError(t, in.Start())
	assert.Equal(t, "te-IN", rec.LastConfig().Locale)
}
