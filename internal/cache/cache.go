// Package cache provides the durable, TTL-bounded key-value store shared by
// the local inventory and the catalog adapters.
package cache

import (
	"github.com/nodegraph/modelresolver/internal/db"
)

const (
	// NamespaceSearch holds catalog adapter search results, keyed by
	// (adapter_id, normalized_query).
	NamespaceSearch = "search"
	// NamespaceInventory holds local-inventory scan results, keyed by the
	// absolute scanned root.
	NamespaceInventory = "inventory"
)

// Cache is a namespaced key-value store with per-entry TTL, backed by
// SQLite so entries survive across runs.
type Cache struct {
	db *db.DB
}

// New wraps an already-open database as a Cache.
func New(d *db.DB) *Cache {
	return &Cache{db: d}
}

// Stats summarizes the entries held under a namespace.
type Stats struct {
	Namespace string
	Count     int
	Bytes     int64
}

// Set stores value under (namespace, key) with the given TTL, in seconds.
func (c *Cache) Set(namespace, key string, value []byte, ttlSeconds int64, now int64) error {
	c.db.Lock()
	defer c.db.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO cache_entries (namespace, key, value, inserted_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET
		   value = excluded.value,
		   inserted_at = excluded.inserted_at,
		   ttl_seconds = excluded.ttl_seconds`,
		namespace, key, value, now, ttlSeconds,
	)
	return err
}

// Get returns the value stored under (namespace, key), and whether it is
// still within its TTL as of now. A row past its TTL is reported as a miss
// without being deleted; a future Set (or Clear) reclaims the space.
func (c *Cache) Get(namespace, key string, now int64) ([]byte, bool, error) {
	c.db.RLock()
	defer c.db.RUnlock()

	var value []byte
	var insertedAt, ttl int64
	row := c.db.QueryRow(
		`SELECT value, inserted_at, ttl_seconds FROM cache_entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	)
	if err := row.Scan(&value, &insertedAt, &ttl); err != nil {
		return nil, false, nil
	}
	if now-insertedAt >= ttl {
		return nil, false, nil
	}
	return value, true, nil
}

// Clear removes every entry in namespace. An empty namespace clears the
// entire cache.
func (c *Cache) Clear(namespace string) error {
	c.db.Lock()
	defer c.db.Unlock()

	var err error
	if namespace == "" {
		_, err = c.db.Exec(`DELETE FROM cache_entries`)
	} else {
		_, err = c.db.Exec(`DELETE FROM cache_entries WHERE namespace = ?`, namespace)
	}
	return err
}

// StatsByNamespace reports entry counts and total stored bytes per namespace.
func (c *Cache) StatsByNamespace() ([]Stats, error) {
	c.db.RLock()
	defer c.db.RUnlock()

	rows, err := c.db.Query(
		`SELECT namespace, COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM cache_entries GROUP BY namespace`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Stats
	for rows.Next() {
		var s Stats
		if err := rows.Scan(&s.Namespace, &s.Count, &s.Bytes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
