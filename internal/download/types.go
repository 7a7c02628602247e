// Package download implements the concurrent Download Manager: a bounded
// worker pool that transfers artifacts to well-known paths on disk with
// resume, retry, progress reporting, and atomic rename on completion.
package download

import (
	"errors"
	"time"

	"github.com/nodegraph/modelresolver/internal/registry"
)

// State is a DownloadTask's position in its state machine.
type State string

const (
	StateQueued    State = "queued"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Sentinel errors forming the taxonomy this package surfaces (spec §7).
var (
	// ErrTargetBusy is returned by Enqueue when another queued or active task
	// already owns the requested target_path.
	ErrTargetBusy = errors.New("download: target busy")
	// ErrIntegrityFailure marks a transfer that completed but whose final
	// size does not match the declared expected size.
	ErrIntegrityFailure = errors.New("download: integrity failure")
	// ErrPermanentFailure wraps 4xx (other than 408/429), disk-full, or an
	// unsupported target directory.
	ErrPermanentFailure = errors.New("download: permanent failure")
	// ErrCancelled marks cooperative cancellation of an in-flight transfer.
	ErrCancelled = errors.New("download: cancelled")
)

// Task is the unit of work for the Download Manager.
type Task struct {
	ID           string
	Filename     string
	Kind         registry.Kind
	SourceURL    string
	TargetPath   string
	TempPath     string
	ExpectedSize int64 // 0 when unknown

	State        State
	Retries      int
	MaxRetries   int
	BytesDone    int64
	ErrorMessage string
	EnqueuedAt   time.Time
	FinishedAt   time.Time

	cancel func()
}

// ProgressEvent is emitted on the Manager's progress channel no more than
// 4 times per second per active task.
type ProgressEvent struct {
	TaskID            string
	BytesTransferred  int64
	TotalBytes        int64   // 0 when unknown
	InstantaneousRate float64 // bytes/second; the Manager does not compute it and leaves it 0
	State             State
	Time              time.Time
}

// Status is a snapshot of the manager's queue and task table.
type Status struct {
	Queued  []Task
	Active  []Task
	History []Task
}
