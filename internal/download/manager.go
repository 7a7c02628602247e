package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nodegraph/modelresolver/internal/db"
)

const defaultHistoryLimit = 100

// Config configures a Manager.
type Config struct {
	Concurrency int // default 3
	MaxRetries  int // default 3
	ChunkBytes  int64
	Timeout     time.Duration // per-task HTTP timeout, 0 means none
	Auth        AuthHeaders
}

// Manager is the bounded-concurrency Download Manager (spec §4.10): it
// accepts enqueue requests, runs at most Config.Concurrency transfers at
// once, and tracks every task's lifecycle through to a persisted history
// entry.
type Manager struct {
	cfg    Config
	db     *db.DB
	log    *slog.Logger
	client *http.Client
	xfer   transferer
	sem    *semaphore.Weighted

	progress chan ProgressEvent

	mu      sync.Mutex
	queued  []*Task
	active  map[string]*Task
	busy    map[string]string // target_path -> task id
	done    sync.WaitGroup
}

// New constructs a Manager backed by d for history persistence.
func New(cfg Config, d *db.DB, log *slog.Logger) *Manager {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		db:       d,
		log:      log,
		client:   &http.Client{Timeout: cfg.Timeout},
		xfer:     newHTTPTransferer(cfg.ChunkBytes),
		sem:      semaphore.NewWeighted(int64(cfg.Concurrency)),
		progress: make(chan ProgressEvent, 64),
		active:   make(map[string]*Task),
		busy:     make(map[string]string),
	}
}

// Progress returns the channel progress events are published on. Callers
// should drain it continuously; events are dropped (not blocked on) when
// the channel is full, since progress is advisory.
func (m *Manager) Progress() <-chan ProgressEvent { return m.progress }

// Enqueue admits a new download task. It rejects a target_path already
// owned by another queued or active task (spec §4.10's "at most one active
// task per target").
func (m *Manager) Enqueue(ctx context.Context, t Task) (string, error) {
	m.mu.Lock()
	if owner, taken := m.busy[t.TargetPath]; taken {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: target %q already owned by task %s", ErrTargetBusy, t.TargetPath, owner)
	}

	t.ID = uuid.NewString()
	t.State = StateQueued
	t.MaxRetries = m.cfg.MaxRetries
	t.EnqueuedAt = time.Now()
	m.busy[t.TargetPath] = t.ID
	task := &t
	m.queued = append(m.queued, task)
	m.mu.Unlock()

	m.done.Add(1)
	go m.run(ctx, task)

	return task.ID, nil
}

// Status returns a snapshot of the queue, active tasks, and recent history.
func (m *Manager) Status() Status {
	m.mu.Lock()
	var st Status
	for _, t := range m.queued {
		st.Queued = append(st.Queued, *t)
	}
	for _, t := range m.active {
		st.Active = append(st.Active, *t)
	}
	m.mu.Unlock()

	if m.db != nil {
		if hist, err := loadHistory(m.db, defaultHistoryLimit); err == nil {
			st.History = hist
		} else {
			m.log.Warn("download: failed to load history", "error", err)
		}
	}
	return st
}

// Pause cooperatively cancels an active task's transfer, leaving its
// temp_path intact so Resume can continue from where it left off.
func (m *Manager) Pause(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.active[id]
	if !ok {
		return fmt.Errorf("download: no active task %s", id)
	}
	t.State = StatePaused
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

// Resume re-enqueues a paused task, picking up from its existing temp_path.
func (m *Manager) Resume(ctx context.Context, id string) error {
	m.mu.Lock()
	t, ok := m.active[id]
	if !ok || t.State != StatePaused {
		m.mu.Unlock()
		return fmt.Errorf("download: no paused task %s", id)
	}
	delete(m.active, id)
	t.State = StateQueued
	m.queued = append(m.queued, t)
	m.mu.Unlock()

	m.done.Add(1)
	go m.run(ctx, t)
	return nil
}

// Cancel terminates a queued or active task and frees its target_path.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.active[id]; ok {
		t.State = StateCancelled
		if t.cancel != nil {
			t.cancel()
		}
		return nil
	}
	for i, t := range m.queued {
		if t.ID == id {
			t.State = StateCancelled
			m.queued = append(m.queued[:i], m.queued[i+1:]...)
			delete(m.busy, t.TargetPath)
			return nil
		}
	}
	return fmt.Errorf("download: unknown task %s", id)
}

// run drives one task from queued through to a terminal state, retrying
// transient failures with exponential backoff up to MaxRetries.
func (m *Manager) run(ctx context.Context, t *Task) {
	defer m.done.Done()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.finish(t, StateCancelled, ErrCancelled)
		return
	}
	defer m.sem.Release(1)

	m.moveToActive(t)

	taskCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	defer cancel()

	bo := newBackoff()
	var lastErr error
	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		if t.State == StateCancelled {
			m.finish(t, StateCancelled, ErrCancelled)
			return
		}

		err := m.xfer.transfer(taskCtx, m.client, t, m.cfg.Auth, func(bytesDone int64) {
			m.emitProgress(t, bytesDone)
		})
		if err == nil {
			m.finish(t, StateSucceeded, nil)
			return
		}
		lastErr = err

		if errors.Is(err, ErrCancelled) || errors.Is(err, ErrIntegrityFailure) || errorsIsPermanent(err) {
			m.finish(t, terminalStateFor(err), err)
			return
		}

		t.Retries = attempt + 1
		if attempt == t.MaxRetries {
			break
		}
		if !sleepCtx(taskCtx, bo.Next()) {
			m.finish(t, StateCancelled, ErrCancelled)
			return
		}
	}
	m.finish(t, StateFailed, lastErr)
}

func terminalStateFor(err error) State {
	if errors.Is(err, ErrCancelled) {
		return StateCancelled
	}
	return StateFailed
}

func errorsIsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentFailure)
}

func (m *Manager) moveToActive(t *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.queued {
		if q.ID == t.ID {
			m.queued = append(m.queued[:i], m.queued[i+1:]...)
			break
		}
	}
	if t.State == StateCancelled {
		// Cancelled while queued: run's loop finishes it without a transfer.
		return
	}
	t.State = StateActive
	m.active[t.ID] = t
}

func (m *Manager) finish(t *Task, state State, err error) {
	m.mu.Lock()
	delete(m.active, t.ID)
	delete(m.busy, t.TargetPath)
	t.State = state
	t.FinishedAt = time.Now()
	if err != nil {
		t.ErrorMessage = err.Error()
	}
	snapshot := *t
	m.mu.Unlock()

	m.emitProgress(t, t.BytesDone)

	if m.db == nil || state == StateQueued || state == StateActive || state == StatePaused {
		return
	}
	if err := recordHistory(m.db, snapshot); err != nil {
		m.log.Warn("download: failed to persist history", "task", t.ID, "error", err)
	}
}

func (m *Manager) emitProgress(t *Task, bytesDone int64) {
	ev := ProgressEvent{
		TaskID:           t.ID,
		BytesTransferred: bytesDone,
		TotalBytes:       t.ExpectedSize,
		State:            t.State,
		Time:             time.Now(),
	}
	select {
	case m.progress <- ev:
	default:
	}
}

// Wait blocks until every enqueued task has reached a terminal state.
func (m *Manager) Wait() { m.done.Wait() }
