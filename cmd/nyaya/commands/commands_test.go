package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nyaya/internal/config"
	"github.com/teslashibe/go-nyaya/pkg/inference"
	"github.com/teslashibe/go-nyaya/pkg/law"
	"github.com/teslashibe/go-nyaya/pkg/markup"
	"github.com/teslashibe/go-nyaya/pkg/query"
)

// run executes the command line with args against provider and returns
// stdout.
func run(t *testing.T, provider inference.Provider, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	orig := newProvider
	newProvider = func(*config.Config) (inference.Provider, error) { return provider, nil }
	t.Cleanup(func() { newProvider = orig })

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLawsCommand(t *testing.T) {
	out, err := run(t, inference.NewMock(), "laws")
	require.NoError(t, err)

	for _, opt := range law.Laws() {
		assert.Contains(t, out, opt.FullName)
	}
	assert.NotContains(t, out, "Audiences")
}

func TestLawsCommandAll(t *testing.T) {
	out, err := run(t, inference.NewMock(), "laws", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Audiences")
	assert.Contains(t, out, "Filing Procedure")
	assert.Contains(t, out, "Telugu")
}

func TestAskRaw(t *testing.T) {
	mock := inference.WithText("## Bail\n- **Section 480** applies")
	out, err := run(t, mock, "ask", "--raw", "-l", "bnss", "-a", "student", "What", "is", "bail?")
	require.NoError(t, err)
	assert.Equal(t, "## Bail\n- **Section 480** applies\n", out)

	require.Equal(t, 1, mock.CallCount("Generate"))
	prompt := mock.LastCall().Prompt
	assert.Contains(t, prompt, "Bharatiya Nagarik Suraksha Sanhita, 2023")
	assert.NotContains(t, prompt, "Code of Civil Procedure, 1908")
	assert.Contains(t, prompt, "Law Student (with details and concepts)")
	assert.Contains(t, prompt, "What is bail?")
}

func TestAskRendered(t *testing.T) {
	out, err := run(t, inference.WithText("## Bail\n- **Section 480** applies"), "ask", "What is bail?")
	require.NoError(t, err)
	assert.Contains(t, out, "Bail")
	assert.Contains(t, out, "Section 480")
}

func TestAskCopy(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(text string) error { copied = text; return nil }
	t.Cleanup(func() { clipboardWrite = orig })

	_, err := run(t, inference.WithText("answer"), "ask", "--raw", "--copy", "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", copied)
}

func TestAskValidation(t *testing.T) {
	mock := inference.NewMock()
	_, err := run(t, mock, "ask", "   ")
	require.Error(t, err)
	assert.Equal(t, query.ValidationMessage, err.Error())
	assert.Equal(t, 0, mock.CallCount("Generate"))
}

func TestAskUnknownLaw(t *testing.T) {
	_, err := run(t, inference.NewMock(), "ask", "-l", "ipc", "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, law.ErrUnknownLaw))
}

func TestAskProviderFailure(t *testing.T) {
	_, err := run(t, inference.WithError(inference.ErrProviderUnavailable), "ask", "q")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to get response from AI. "))
	assert.True(t, errors.Is(err, inference.ErrProviderUnavailable))
}

func TestBuildState(t *testing.T) {
	st, err := buildState([]string{"hma", "HMA", "dv"}, "PROFESSIONAL", "punish", "telugu", "divorce")
	require.NoError(t, err)
	assert.Equal(t, []law.Law{law.HMA, law.DV}, st.SelectedLaws)
	assert.Equal(t, "Legal Professional (technical, with citations)", st.Audience)
	assert.Equal(t, "Punishments / Remedies", st.QueryFocus)
	assert.Equal(t, law.Telugu, st.OutputLanguage)
	assert.Equal(t, "divorce", st.Query)

	_, err = buildState(nil, "judge", "", "", "q")
	assert.ErrorIs(t, err, query.ErrUnknownOption)
}

func TestWriteRendered(t *testing.T) {
	var b bytes.Buffer
	writeRendered(&b, markup.Parse("## Bail\n1. **Section 480** applies"))
	assert.Contains(t, b.String(), "Bail")
	assert.Contains(t, b.String(), "Section 480")
}

func TestErrorPanel(t *testing.T) {
	panel := ErrorPanel("no key")
	assert.Contains(t, panel, "Error")
	assert.Contains(t, panel, "no key")
}
