// Package walker provides the filesystem traversal the Local Inventory
// scans a models root with: recursive directory descent that tolerates an
// unreadable subtree instead of aborting, plus glob include/exclude
// filtering.
package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path       string // Absolute path on disk.
	RelPath    string // Path relative to the root directory, forward-slashed.
	Size       int64
	ModifiedAt int64 // Unix seconds.
}

// SkippedSubtree records a directory or file the walker could not read;
// traversal continues past it rather than aborting.
type SkippedSubtree struct {
	Path string
	Err  string
}

// WalkerConfig controls the behaviour of Walk.
type WalkerConfig struct {
	RootDir string   // Root directory to walk.
	Include []string // Glob patterns — only matching files are included. Empty means everything.
	Exclude []string // Glob patterns — matching files are excluded.
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// metadata for every regular file that passes filtering. A subtree the
// walker cannot read is recorded in the returned skip list and the
// traversal continues past it.
func Walk(config WalkerConfig) ([]FileInfo, []SkippedSubtree, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	var (
		files   []FileInfo
		skipped []SkippedSubtree
	)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			skipped = append(skipped, SkippedSubtree{Path: path, Err: walkErr.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			skipped = append(skipped, SkippedSubtree{Path: path, Err: err.Error()})
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !MatchesInclude(relPath, config.Include) || MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped = append(skipped, SkippedSubtree{Path: path, Err: err.Error()})
			return nil
		}

		files = append(files, FileInfo{
			Path:       path,
			RelPath:    relPath,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, skipped, nil
}

// TopLevelDir returns the first path component of a forward-slashed
// relative path, or "" if the file sits directly under the root.
func TopLevelDir(relPath string) string {
	if idx := strings.Index(relPath, "/"); idx >= 0 {
		return relPath[:idx]
	}
	return ""
}
