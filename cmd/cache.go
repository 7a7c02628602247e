package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodegraph/modelresolver/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the search and inventory caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts and byte sizes per cache namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Cache.StatsByNamespace()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		fmt.Printf("%-12s %-8s %s\n", "NAMESPACE", "COUNT", "BYTES")
		for _, s := range stats {
			fmt.Printf("%-12s %-8d %d\n", s.Namespace, s.Count, s.Bytes)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [namespace]",
	Short: "Clear one cache namespace (search or inventory), or every namespace when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ns := ""
		if len(args) == 1 {
			ns = args[0]
			switch ns {
			case cache.NamespaceSearch, cache.NamespaceInventory:
			default:
				return fmt.Errorf("unknown namespace %q (expected %q or %q)", ns, cache.NamespaceSearch, cache.NamespaceInventory)
			}
		}

		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Cache.Clear(ns); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		if ns == "" {
			fmt.Println("cleared all caches")
			return nil
		}
		fmt.Printf("cleared %s cache\n", ns)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
