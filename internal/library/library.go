// Package library manages the local directory of rendered videos waiting
// for upload or cleanup.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Item struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type Library struct {
	dir string
}

func New(dir string) *Library {
	return &Library{dir: dir}
}

func (l *Library) EnsureDir() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	return nil
}

// List returns the stored videos, newest first. A missing directory is an
// empty library, not an error.
func (l *Library) List() ([]Item, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp4" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, Item{
			Name:    entry.Name(),
			Path:    filepath.Join(l.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ModTime.After(items[j].ModTime)
	})
	return items, nil
}

// Delete removes one video by name. Names are file names only; anything
// that looks like a path is rejected.
func (l *Library) Delete(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid video name %q", name)
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// Path resolves a stored video's full path without checking existence.
func (l *Library) Path(name string) string {
	return filepath.Join(l.dir, name)
}

// FormatSize renders a byte count the way the operator-facing listings
// show it.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
