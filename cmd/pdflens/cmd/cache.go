package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdflens/internal/application/commands"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the text and render caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := commands.NewCacheStatsCommand(stack.Catalog, stack.Store).Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("catalog   %s\n", stack.Catalog.Path())
		fmt.Printf("  documents  %d\n", stats.Catalog.Documents)
		fmt.Printf("  pages      %d\n", stats.Catalog.Pages)
		fmt.Printf("  text       %s\n", humanBytes(stats.Catalog.TextBytes))
		fmt.Printf("renders   %s\n", stack.Store.Root())
		fmt.Printf("  documents  %d\n", stats.Renders.Documents)
		fmt.Printf("  pages      %d\n", stats.Renders.Pages)
		fmt.Printf("  size       %s\n", humanBytes(stats.Renders.Bytes))
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop entries for documents that changed or disappeared",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := commands.NewPruneCacheCommand(stack.Catalog, stack.Store, stack.Fingerprint).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached text and renders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := commands.NewClearCacheCommand(stack.Catalog, stack.Store).Execute(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
