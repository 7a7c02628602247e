package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodegraph/modelresolver/internal/match"
)

var checkCmd = &cobra.Command{
	Use:   "check [workflow.json]",
	Short: "Check a workflow's artifacts against the local models directory",
	Long:  `Analyzes a workflow and matches each artifact it needs against the indexed local inventory, reporting present/partial/missing without searching any remote catalog.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	refs, err := c.Analyze(raw, nil)
	if err != nil {
		return fmt.Errorf("analyzing workflow: %w", err)
	}
	results := c.Match(refs)

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("%-40s %-10s %s\n", "FILENAME", "STATUS", "SCORE")
	missing := 0
	for _, r := range results {
		fmt.Printf("%-40s %-10s %.2f\n", r.Ref.Filename, r.Status, r.Score)
		if r.Status == match.StatusMissing {
			missing++
		}
	}
	if missing > 0 {
		fmt.Printf("\n%d artifact(s) missing. Run `modelresolver resolve` to search remote catalogs.\n", missing)
	}
	return nil
}
