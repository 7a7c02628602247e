package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodegraph/modelresolver/internal/match"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [workflow.json]",
	Short: "Build a full resolution plan for a workflow",
	Long:  `Analyzes a workflow, matches every artifact against the local inventory, and searches the routed catalogs for anything not fully present, printing a ranked plan.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading workflow: %w", err)
	}

	c, err := loadCore()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Inventory.Index(c.Config.Paths.ModelsRoot); err != nil {
		return fmt.Errorf("indexing models root: %w", err)
	}

	plan, err := c.BuildPlan(context.Background(), raw, nil)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	for _, item := range plan.Items {
		fmt.Printf("%-40s %s\n", item.Match.Ref.Filename, item.Match.Status)
		if item.Match.Status == match.StatusPresent {
			continue
		}
		if item.Candidates == nil || len(item.Candidates.Hits) == 0 {
			fmt.Println("  no remote candidates found")
			continue
		}
		for i, h := range item.Candidates.Hits {
			marker := " "
			if h.DirectURL == item.Candidates.Recommended {
				marker = "*"
			}
			fmt.Printf("  %s [%d] %s (%s, score %d)\n", marker, i+1, h.DirectURL, h.RepositoryOrAuthor, h.Score)
		}
	}
	return nil
}
