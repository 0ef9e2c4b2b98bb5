// Package resolver expands a raw path specification into the directories
// to scan and the image files named explicitly.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"cip/pkg/imgutil"
)

// Delimiter separates entries of a path specification.
const Delimiter = "*"

// PathSet is the outcome of resolving a path specification.
type PathSet struct {
	// Directories holds every directory to scan, each once, in discovery order.
	Directories []string
	// Files holds explicit image files in the order they were given.
	Files []string
}

// Split breaks spec into its non-empty entries.
func Split(spec string) []string {
	var entries []string
	for _, entry := range strings.Split(spec, Delimiter) {
		if entry == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// Partition separates explicit image files from directory seeds.
func Partition(entries []string) (dirs, files []string) {
	for _, entry := range entries {
		if imgutil.KindFromName(entry) != imgutil.KindUnknown {
			files = append(files, entry)
			continue
		}
		dirs = append(dirs, entry)
	}
	return dirs, files
}

// Resolve splits spec, partitions its entries and descends depth levels
// below every directory seed.
func Resolve(fs afero.Fs, spec string, depth int) (PathSet, error) {
	if depth < 0 {
		return PathSet{}, fmt.Errorf("depth must be >= 0, got %d", depth)
	}
	entries := Split(spec)
	if len(entries) == 0 {
		return PathSet{}, errors.New("empty path specification")
	}

	seeds, files := Partition(entries)

	levels := make([][]string, 0, depth+1)
	levels = append(levels, seeds)
	for i := 1; i <= depth; i++ {
		next, err := innerDirectories(fs, levels[i-1])
		if err != nil {
			return PathSet{}, err
		}
		levels = append(levels, next)
	}

	return PathSet{Directories: dedupe(levels), Files: files}, nil
}

// innerDirectories lists the immediate subdirectories of every parent.
func innerDirectories(fs afero.Fs, parents []string) ([]string, error) {
	var dirs []string
	for _, parent := range parents {
		entries, err := afero.ReadDir(fs, parent)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", parent, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(parent, entry.Name()))
			}
		}
	}
	return dirs, nil
}

func dedupe(levels [][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, level := range levels {
		for _, dir := range level {
			key := filepath.Clean(dir)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, dir)
		}
	}
	return out
}
