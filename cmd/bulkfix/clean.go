package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bulkfix/internal/dcache"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the diagnostic cache",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := dcache.Open("bulkfix")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	keys, err := cache.Keys()
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries from %s\n", len(keys), cache.Dir())
	return nil
}
