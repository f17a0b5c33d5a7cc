package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/ice/internal/codes"
	"github.com/Norgate-AV/ice/internal/compiler"
	"github.com/Norgate-AV/ice/internal/pipeline"
	"github.com/Norgate-AV/ice/internal/version"
)

var rootCmd = newRootCmd()

// newRunner creates what runs the compiler, replaced in tests
var newRunner = func(logger *log.Logger) pipeline.Runner {
	return compiler.NewCommandBuilder(logger)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ice [dir]",
		Short: "Incremental C/C++ builds without a build file",
		Long: `ice works out what a C/C++ project depends on by asking the compiler,
finds sibling libraries next to the project, and recompiles only what is out of date.`,
		RunE:          runBuild,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
	}

	cmd.Version = versionString()

	flags := cmd.PersistentFlags()
	flags.StringP("dir", "C", ".", "Directory to build from")
	flags.StringP("target", "t", "", "Build target (debug or release)")
	flags.BoolP("opt", "O", false, "Shorthand for --target release")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.IntP("jobs", "j", 0, "Parallel jobs (0 = one per CPU)")
	flags.String("compiler", "", "Compiler executable")
	flags.Bool("no-cache", false, "Ignore stored dependency information")
	flags.BoolP("dry-run", "n", false, "Show what would be compiled without compiling")

	cmd.AddCommand(newBuildCmd(), newDepsCmd(), newLibsCmd(), newCacheCmd(), newVersionCmd())

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		code := reportError(newLogger(rootCmd.ErrOrStderr(), false), err)

		stop()
		os.Exit(code)
	}
}

// reportError logs a failed run and returns the exit code for it
func reportError(logger *log.Logger, err error) int {
	code := codes.FromError(err)
	logger.Error(codes.GetErrorMessage(code), "err", err)

	return code
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "ice"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

func versionString() string {
	return fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ice", versionString())
		},
	}
}
