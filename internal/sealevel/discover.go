package sealevel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FindLatest returns the newest file in dir matching pattern, judged by the
// filesystem modification time rather than anything encoded in the name.
func FindLatest(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	var (
		latest     string
		latestTime time.Time
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest = path
			latestTime = info.ModTime()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w: no file matching %s in %s", ErrDatasetNotFound, pattern, dir)
	}
	return latest, nil
}

// ResolveDataset returns path when set, otherwise the newest detailed dataset in dir.
func ResolveDataset(dir, path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return FindLatest(dir, DatasetPattern)
}

// DirSource loads Path when set, otherwise the newest detailed dataset in Dir.
type DirSource struct {
	Dir  string
	Path string
}

// Latest resolves and loads the dataset. A missing file yields ErrDatasetNotFound.
func (s DirSource) Latest(_ context.Context) (Dataset, error) {
	path, err := ResolveDataset(s.Dir, s.Path)
	if err != nil {
		return Dataset{}, err
	}
	return LoadCSV(path)
}
