package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps [dir]",
		Short: "Print the dependency report",
		Long: `Analyze the project without compiling and print, as YAML, every source
file's dependencies, the out-of-date files, sibling projects and link order.
With --file, print only that file's dependency list.`,
		RunE:         runDeps,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
	}

	cmd.Flags().StringP("file", "f", "", "Print the dependencies of this file only")

	return cmd
}

func runDeps(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.pipeline(cmd)
	if err != nil {
		return err
	}

	var out any
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}

		name, deps, err := p.FileDependencies(cmd.Context(), abs)
		if err != nil {
			return err
		}

		out = map[string][]string{name: deps}
	} else {
		report, err := p.Analyze(cmd.Context())
		if err != nil {
			return err
		}

		out = report
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return enc.Close()
}
