package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/ice/internal/library"
	"github.com/Norgate-AV/ice/internal/utils"
)

func newLibsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libs [name...]",
		Short: "Query the library registry",
		Long: `Print the named libraries in link order, or every known library when
none are named. --header and --symbol look up which libraries provide them.`,
		RunE:         runLibs,
		SilenceUsage: true,
	}

	cmd.Flags().String("header", "", "List libraries providing this header")
	cmd.Flags().String("symbol", "", "List libraries defining this symbol")
	cmd.Flags().String("os", runtime.GOOS, "Operating system whose registry to use")
	cmd.Flags().Bool("deps", false, "Include the libraries the named ones depend on")
	cmd.Flags().Bool("flags", false, "Print linker flags instead of names")

	return cmd
}

func runLibs(cmd *cobra.Command, args []string) error {
	goos, _ := cmd.Flags().GetString("os")
	header, _ := cmd.Flags().GetString("header")
	symbol, _ := cmd.Flags().GetString("symbol")
	withDeps, _ := cmd.Flags().GetBool("deps")
	asFlags, _ := cmd.Flags().GetBool("flags")

	registry, err := library.NewBuiltin(goos)
	if err != nil {
		return err
	}
	catalog := library.NewCatalog(registry)

	names := args
	switch {
	case header != "":
		names = catalog.ForHeader(header)
	case symbol != "":
		names = catalog.ForSymbol(symbol)
	case len(names) == 0:
		names = registry.Names()
	}

	if withDeps {
		names = catalog.Closure(names)
	}

	catalog.Sort(names)

	out := cmd.OutOrStdout()
	if asFlags {
		targetName, _ := cmd.Flags().GetString("target")
		if opt, _ := cmd.Flags().GetBool("opt"); opt {
			targetName = string(utils.Release)
		}

		target, err := utils.ParseTarget(targetName)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, strings.Join(catalog.LinkFlags(names, target, goos), " "))
		return nil
	}

	for _, name := range names {
		fmt.Fprintln(out, name)
	}

	return nil
}
