package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dependency cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "clear [dir]",
		Short:        "Forget every stored dependency list and warning",
		RunE:         runCacheClear,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
	}, &cobra.Command{
		Use:          "stats [dir]",
		Short:        "Show what the cache holds",
		RunE:         runCacheStats,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
	})

	return cmd
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.store.Clear(); err != nil {
		return err
	}

	s.logger.Info("Cache cleared", "dir", s.cfg.CacheDir)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	stats, err := s.store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "location: %s\n", s.cfg.CacheDir)
	fmt.Fprintf(out, "records: %d\n", stats.Records)
	fmt.Fprintf(out, "warnings: %d\n", stats.Warnings)
	fmt.Fprintf(out, "size: %d\n", stats.Size)

	return nil
}
