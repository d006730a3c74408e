// Package syncer keeps the persisted index in step with the source
// directory. It scans the corpus for indexable files and classifies each
// path as new, modified, unchanged, or deleted by comparing modification
// times against the persisted file records.
//
// The comparison is mtime-based only; file contents are not hashed. A file
// rewritten with an identical mtime will not be detected as changed. This is
// a documented limitation of the cheap check, not a defect.
package syncer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileStat is one entry of a directory snapshot.
type FileStat struct {
	Path    string
	ModTime time.Time
}

// Plan is the outcome of reconciling a snapshot against the persisted file
// records. ToIndex holds paths that are new or modified; ToDelete holds
// paths whose records exist but whose files are gone.
type Plan struct {
	ToIndex  []string
	ToDelete []string
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool {
	return len(p.ToIndex) == 0 && len(p.ToDelete) == 0
}

// Scan walks root and returns stats for regular files whose extension is in
// exts (e.g. ".txt", ".md"). Hidden directories are skipped. Paths are
// relative to root, slash-separated, and returned in sorted order.
func Scan(root string, exts []string) ([]FileStat, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var files []FileStat
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, FileStat{
			Path:    filepath.ToSlash(rel),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Reconcile compares a directory snapshot against the persisted path to
// mtime index. A file is indexed when its path is absent from persisted or its
// mtime differs; a record is deleted when its path is absent from the
// snapshot. Unchanged files are untouched.
func Reconcile(current []FileStat, persisted map[string]time.Time) Plan {
	var plan Plan

	seen := make(map[string]struct{}, len(current))
	for _, f := range current {
		seen[f.Path] = struct{}{}
		if prev, ok := persisted[f.Path]; !ok || !prev.Equal(f.ModTime) {
			plan.ToIndex = append(plan.ToIndex, f.Path)
		}
	}

	for path := range persisted {
		if _, ok := seen[path]; !ok {
			plan.ToDelete = append(plan.ToDelete, path)
		}
	}
	sort.Strings(plan.ToDelete)

	return plan
}
