package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodegraph/modelresolver/internal/download"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and control queued and active downloads",
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List queued, active, and recently finished downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()

		st := c.Downloads.Status()
		printTaskSection("QUEUED", st.Queued)
		printTaskSection("ACTIVE", st.Active)
		printTaskSection("HISTORY", st.History)
		return nil
	},
}

var queuePauseCmd = &cobra.Command{
	Use:   "pause [task-id]",
	Short: "Pause an active download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Downloads.Pause(args[0])
	},
}

var queueResumeCmd = &cobra.Command{
	Use:   "resume [task-id]",
	Short: "Resume a paused download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Downloads.Resume(context.Background(), args[0]); err != nil {
			return err
		}
		c.Downloads.Wait()
		return nil
	},
}

var queueCancelCmd = &cobra.Command{
	Use:   "cancel [task-id]",
	Short: "Cancel a queued or active download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCore()
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Downloads.Cancel(args[0])
	},
}

func init() {
	queueCmd.AddCommand(queueStatusCmd, queuePauseCmd, queueResumeCmd, queueCancelCmd)
	rootCmd.AddCommand(queueCmd)
}

func printTaskSection(label string, tasks []download.Task) {
	if len(tasks) == 0 {
		return
	}
	fmt.Printf("%s\n", label)
	for _, t := range tasks {
		fmt.Printf("  %-36s %-10s %-30s %d/%d bytes\n", t.ID, t.State, t.Filename, t.BytesDone, t.ExpectedSize)
	}
}
