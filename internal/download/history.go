package download

import (
	"time"

	"github.com/nodegraph/modelresolver/internal/db"
	"github.com/nodegraph/modelresolver/internal/registry"
)

func kindFromString(s string) registry.Kind { return registry.Kind(s) }

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// recordHistory persists a terminal task to the download_history table and
// trims the table to the newest defaultHistoryLimit entries. It is
// best-effort: a storage error is logged by the caller, not fatal to the
// manager's in-memory state.
func recordHistory(d *db.DB, t Task) error {
	d.Lock()
	defer d.Unlock()

	_, err := d.Exec(
		`INSERT INTO download_history(id, filename, kind, source_url, target_path, state, bytes_transferred, error_message, finished_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   state=excluded.state,
		   bytes_transferred=excluded.bytes_transferred,
		   error_message=excluded.error_message,
		   finished_at=excluded.finished_at`,
		t.ID, t.Filename, string(t.Kind), t.SourceURL, t.TargetPath, string(t.State),
		t.BytesDone, t.ErrorMessage, t.FinishedAt.Unix(),
	)
	if err != nil {
		return err
	}
	_, err = d.Exec(
		`DELETE FROM download_history WHERE id NOT IN
		 (SELECT id FROM download_history ORDER BY finished_at DESC LIMIT ?)`,
		defaultHistoryLimit,
	)
	return err
}

// loadHistory returns the most recent N terminal tasks, newest first.
func loadHistory(d *db.DB, limit int) ([]Task, error) {
	d.RLock()
	defer d.RUnlock()

	rows, err := d.Query(
		`SELECT id, filename, kind, source_url, target_path, state, bytes_transferred, error_message, finished_at
		 FROM download_history ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		var kind, state string
		var finishedAt int64
		if err := rows.Scan(&t.ID, &t.Filename, &kind, &t.SourceURL, &t.TargetPath, &state, &t.BytesDone, &t.ErrorMessage, &finishedAt); err != nil {
			return nil, err
		}
		t.Kind = kindFromString(kind)
		t.State = State(state)
		t.FinishedAt = unixTime(finishedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}
