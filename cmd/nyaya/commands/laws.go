package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nyaya/pkg/law"
)

// laws: list the legal codes and the other option values.
func lawsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "laws",
		Short: "List the legal codes that can be consulted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, opt := range law.Laws() {
				fmt.Fprintf(out, "%s %s\n", idStyle.Render(string(opt.ID)), opt.FullName)
			}
			if !all {
				return nil
			}

			sections := []struct {
				title  string
				values []string
			}{
				{"Audiences", law.Audiences()},
				{"Focuses", law.Focuses()},
				{"Languages", law.Languages()},
			}
			for _, s := range sections {
				fmt.Fprintf(out, "\n%s\n", mutedStyle.Render(s.title))
				for _, v := range s.values {
					fmt.Fprintf(out, "  %s\n", v)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also list audiences, focuses and languages")
	return cmd
}
