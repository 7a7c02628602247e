package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/nodegraph/modelresolver/internal/download"
	"github.com/nodegraph/modelresolver/internal/match"
	"github.com/nodegraph/modelresolver/internal/progress"
)

var downloadCmd = &cobra.Command{
	Use:   "download [workflow.json]",
	Short: "Resolve a workflow and download whatever is missing",
	Long:  `Builds a resolution plan for a workflow and, for every artifact that is missing locally (partial matches are skipped), enqueues a download of the top-ranked candidate to the right subdirectory of the models root.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().Bool("yes", false, "download every recommended candidate without prompting")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading workflow: %w", err)
	}
	assumeYes, _ := cmd.Flags().GetBool("yes")

	c, err := loadCore()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Inventory.Index(c.Config.Paths.ModelsRoot); err != nil {
		return fmt.Errorf("indexing models root: %w", err)
	}

	ctx := context.Background()
	plan, err := c.BuildPlan(ctx, raw, nil)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}

	reporter := progress.NewReporter()
	queued := 0
	for _, item := range plan.Items {
		if item.Match.Status != match.StatusMissing {
			continue
		}
		if item.Candidates == nil || item.Candidates.Recommended == "" {
			fmt.Printf("skipping %s: no remote candidate found\n", item.Match.Ref.Filename)
			continue
		}

		if !assumeYes {
			confirm := promptui.Select{
				Label: fmt.Sprintf("Download %s from %s?", item.Match.Ref.Filename, item.Candidates.Recommended),
				Items: []string{"yes", "no"},
			}
			_, choice, err := confirm.Run()
			if err != nil {
				return fmt.Errorf("prompt cancelled: %w", err)
			}
			if choice != "yes" {
				continue
			}
		}

		subdir := c.SubdirsByKind(item.Match.Ref.Kind)
		target := filepath.Join(c.Config.Paths.ModelsRoot, subdir, item.Match.Ref.Filename)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}

		task := download.Task{
			Filename:   item.Match.Ref.Filename,
			Kind:       item.Match.Ref.Kind,
			SourceURL:  item.Candidates.Recommended,
			TargetPath: target,
			TempPath:   target + ".part",
		}
		id, err := c.Downloads.Enqueue(ctx, task)
		if err != nil {
			fmt.Fprintf(os.Stderr, "enqueue %s: %v\n", item.Match.Ref.Filename, err)
			continue
		}
		queued++
		progress.WatchDownload(ctx, reporter, c.Downloads, id, 0)
	}

	c.Downloads.Wait()
	fmt.Printf("%d download(s) queued.\n", queued)
	return nil
}
