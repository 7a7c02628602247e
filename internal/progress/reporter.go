// Package progress reports feedback for long-running CLI operations: an
// inventory scan, a catalog search, or a download transfer.
package progress

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/nodegraph/modelresolver/internal/download"
)

// Reporter provides progress feedback for a single labeled operation.
type Reporter interface {
	Start(total int, label string)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a CIReporter if the CI or GITHUB_ACTIONS environment
// variable is set, and a TerminalReporter otherwise.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, label string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	if message != "" {
		r.bar.Describe(message)
	}
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
	label string
}

func (r *CIReporter) Start(total int, label string) {
	r.total = total
	r.label = label
	fmt.Fprintf(os.Stderr, "%s: starting (%d total)\n", label, total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(os.Stderr, "[%s %d/%d] %s\n", r.label, current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(os.Stderr, "%s: complete\n", r.label)
}

// WatchDownload feeds r from the manager's progress stream, filtering to
// events for taskID, until the task reaches a terminal state or ctx is
// cancelled.
func WatchDownload(ctx context.Context, r Reporter, mgr *download.Manager, taskID string, totalBytes int64) {
	r.Start(int(totalBytes), "downloading "+taskID)
	defer r.Finish()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-mgr.Progress():
			if !ok {
				return
			}
			if ev.TaskID != taskID {
				continue
			}
			r.Update(int(ev.BytesTransferred), string(ev.State))
			switch ev.State {
			case download.StateSucceeded, download.StateFailed, download.StateCancelled:
				return
			}
		}
	}
}
