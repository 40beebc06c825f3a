package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkock/bootseq/v3/internal/config"
	"github.com/mkock/bootseq/v3/internal/sim"
)

func newGraphCmd() *cobra.Command {
	var (
		file  string
		edges bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the levels of a boot sequence",
		Long: `Print the components of a sequence file grouped by their depth in the dependency
graph. Components in the same group may start concurrently, and each group starts
after the one before it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(file)
			if err != nil {
				return err
			}
			s, err := sim.Build(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Manager())
			if !edges {
				return nil
			}

			for _, c := range s.Manager().Components() {
				var deps []string
				for _, dep := range c.Dependencies() {
					name := dep.Target.Name()
					if !dep.KeepAlive {
						name += " (no keep-alive)"
					}
					deps = append(deps, name)
				}
				if len(deps) == 0 {
					fmt.Fprintf(out, "%s\n", c.Name())
					continue
				}
				fmt.Fprintf(out, "%s <- %s\n", c.Name(), strings.Join(deps, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the sequence file (required)")
	cmd.Flags().BoolVar(&edges, "edges", false, "Also print the dependencies of every component")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
