// Package commands implements the nyaya command line.
package commands

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nyaya/internal/config"
	"github.com/teslashibe/go-nyaya/internal/log"
	"github.com/teslashibe/go-nyaya/pkg/inference"
)

var (
	cfgFile string
	cfg     *config.Config
)

// newProvider builds the generative provider. Tests replace it.
var newProvider = func(c *config.Config) (inference.Provider, error) {
	return c.NewProvider(log.L())
}

var (
	errorTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	idStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(8)
)

// ErrorPanel renders message as a bordered error box.
func ErrorPanel(message string) string {
	return errorBox.Render(errorTitle.Render("Error") + "\n" + message)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nyaya",
		Short:         "Plain-language explanations of Indian law",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			log.Init(cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./nyaya.yaml or ~/.config/nyaya/nyaya.yaml)")

	root.AddCommand(serveCmd(), askCmd(), lawsCmd())
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}
