package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [workflow.json]",
	Short: "Extract the model artifacts a workflow depends on",
	Long:  `Parses a workflow document and lists every checkpoint, lora, vae, and other artifact its nodes reference, without touching the local inventory or any catalog.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading workflow: %w", err)
	}

	c, err := loadCore()
	if err != nil {
		return err
	}
	defer c.Close()

	refs, err := c.Analyze(raw, func(nodeID, message string) {
		if verbose {
			fmt.Fprintf(os.Stderr, "warning: node %s: %s\n", nodeID, message)
		}
	})
	if err != nil {
		return fmt.Errorf("analyzing workflow: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	if len(refs) == 0 {
		fmt.Println("No artifact references found.")
		return nil
	}
	fmt.Printf("%-40s %-12s %-22s %s\n", "FILENAME", "KIND", "NODE TYPE", "STRATEGY")
	for _, r := range refs {
		fmt.Printf("%-40s %-12s %-22s %s\n", r.Filename, r.Kind, r.NodeType, r.DetectionStrategy)
	}
	return nil
}
