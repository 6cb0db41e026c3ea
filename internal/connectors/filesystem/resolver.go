// Package filesystem supplies note documents from the local filesystem.
// It resolves include globs and explicit file lists into raw contents
// and can watch the resolved locations for changes.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jaytoday/khoj/internal/logger"
)

// Resolve expands the configured input files and input filter globs
// into a mapping from absolute file path to raw content. Files matched
// by both are read once. Unreadable files are skipped with a warning;
// resolution never fails the whole batch for one bad file.
func Resolve(inputFiles, inputFilters []string) (map[string]string, error) {
	paths := make(map[string]struct{})

	for _, pattern := range inputFilters {
		matches, err := filepath.Glob(expandHome(pattern))
		if err != nil {
			logger.Warn("invalid input filter %q: %v", pattern, err)
			continue
		}
		for _, match := range matches {
			paths[match] = struct{}{}
		}
	}
	for _, path := range inputFiles {
		paths[expandHome(path)] = struct{}{}
	}

	files := make(map[string]string, len(paths))
	for path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file %s: %v", path, err)
			continue
		}
		files[path] = string(content)
	}
	logger.Debug("resolved %d files from %d input files and %d filters",
		len(files), len(inputFiles), len(inputFilters))
	return files, nil
}

// WatchTargets derives the directories to watch for the configured
// inputs: the parent directory of each explicit file and the non-glob
// prefix directory of each filter pattern.
func WatchTargets(inputFiles, inputFilters []string) []string {
	dirs := make(map[string]struct{})

	for _, path := range inputFiles {
		dirs[filepath.Dir(expandHome(path))] = struct{}{}
	}
	for _, pattern := range inputFilters {
		dir := expandHome(pattern)
		for strings.ContainsAny(dir, "*?[") {
			dir = filepath.Dir(dir)
		}
		dirs[dir] = struct{}{}
	}

	out := make([]string, 0, len(dirs))
	for dir := range dirs {
		out = append(out, dir)
	}
	return out
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
