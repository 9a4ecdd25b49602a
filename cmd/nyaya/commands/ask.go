package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nyaya/internal/log"
	"github.com/teslashibe/go-nyaya/pkg/law"
	"github.com/teslashibe/go-nyaya/pkg/markup"
	"github.com/teslashibe/go-nyaya/pkg/query"
	"github.com/teslashibe/go-nyaya/pkg/session"
)

// displayError carries the message a user should see alongside the
// underlying cause.
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

// clipboardWrite is swapped out in tests; there is no clipboard in CI.
var clipboardWrite = clipboard.WriteAll

// ask <question>: answer one question in the terminal.
func askCmd() *cobra.Command {
	var (
		laws     []string
		audience string
		focus    string
		language string
		raw      bool
		copyOut  bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Explain a legal question in the terminal",
		Example: `  nyaya ask -l bnss "How do I file an FIR?"
  nyaya ask -l hma -a student --language Telugu "Grounds for divorce"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := buildState(laws, audience, focus, language, strings.Join(args, " "))
			if err != nil {
				return err
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}
			defer provider.Close()

			ctrl := session.New(provider,
				session.WithLogger(log.L()),
				session.WithModel(cfg.Model),
				session.WithState(st),
			)
			defer ctrl.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			if err := ctrl.Submit(ctx); err != nil {
				return &displayError{msg: ctrl.Snapshot().Error, err: err}
			}

			snap := ctrl.Snapshot()
			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, snap.Response)
			} else {
				writeRendered(out, snap.Document())
			}

			if copyOut {
				if err := ctrl.Copy(session.ClipboardFunc(clipboardWrite)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Copied!"))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&laws, "law", "l", nil, "legal codes to consult (default CPC); see `nyaya laws`")
	cmd.Flags().StringVarP(&audience, "audience", "a", "", "audience: layperson, student or professional")
	cmd.Flags().StringVarP(&focus, "focus", "f", "", "focus: general, filing, key elements or punishments")
	cmd.Flags().StringVar(&language, "language", "", "output language: English or Telugu")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the model's text verbatim")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the answer to the clipboard")
	return cmd
}

// buildState turns flag values into query selections. Option values match
// on any case-insensitive fragment, so "student" selects the law student tier.
func buildState(laws []string, audience, focus, language, q string) (query.State, error) {
	st := query.NewState()

	if len(laws) > 0 {
		st.ClearLaws()
		for _, id := range laws {
			opt, err := law.Lookup(id)
			if err != nil {
				return st, fmt.Errorf("%w: %q", err, id)
			}
			if !st.HasLaw(opt.ID) {
				if err := st.ToggleLaw(opt.ID); err != nil {
					return st, err
				}
			}
		}
	}

	if audience != "" {
		if err := st.SetAudience(matchOption(law.Audiences(), audience)); err != nil {
			return st, err
		}
	}
	if focus != "" {
		if err := st.SetQueryFocus(matchOption(law.Focuses(), focus)); err != nil {
			return st, err
		}
	}
	if language != "" {
		if err := st.SetOutputLanguage(matchOption(law.Languages(), language)); err != nil {
			return st, err
		}
	}
	st.SetQuery(q)
	return st, nil
}

// matchOption returns the first value containing s, ignoring case, or
// s unchanged so the setter reports it.
func matchOption(values []string, s string) string {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, v := range values {
		if want != "" && strings.Contains(strings.ToLower(v), want) {
			return v
		}
	}
	return s
}

// writeRendered prints d through glamour, falling back to plain markdown.
func writeRendered(w io.Writer, d markup.Document) {
	md := markup.Markdown(d)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintln(w, md)
}
