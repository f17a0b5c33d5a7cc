package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/ice/internal/cache"
	"github.com/Norgate-AV/ice/internal/config"
	"github.com/Norgate-AV/ice/internal/pipeline"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "build [dir]",
		Short:        "Build the project",
		Long:         `Compile every source file of the project that is out of date.`,
		RunE:         runBuild,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
	}
}

// session is the loaded project an invocation works on
type session struct {
	cfg    *config.Config
	store  *cache.Cache
	logger *log.Logger
}

func openSession(cmd *cobra.Command, args []string) (*session, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := config.NewLoader().LoadForBuild(cmd, dir)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Debug("Loaded configuration",
		"root", cfg.RootDir, "project file", cfg.ProjectFile, "preferences", cfg.PreferenceFile,
		"compiler", cfg.Compiler, "target", cfg.Target)

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, store: store, logger: logger}, nil
}

func (s *session) pipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return pipeline.New(s.cfg, s.store, newRunner(s.logger), pipeline.Options{
		NoCache: noCache,
		DryRun:  dryRun,
		Logger:  s.logger,
	})
}

// close persists what was learned, even when the run failed
func (s *session) close() {
	if err := s.store.Save(); err != nil {
		s.logger.Warn("failed to save cache", "err", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close cache", "err", err)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.pipeline(cmd)
	if err != nil {
		return err
	}

	report, err := p.Build(cmd.Context())
	if err != nil {
		return err
	}

	s.logger.Debug("Link order", "libraries", report.Libraries, "flags", strings.Join(report.LinkFlags, " "))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		for _, f := range report.OutOfDate {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}

		return nil
	}

	s.logger.Info("Build finished", "project", report.Project, "compiled", len(report.Compiled))
	return nil
}
