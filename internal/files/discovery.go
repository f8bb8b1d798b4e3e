package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extensions accepted as record sources
var SourceExtensions = []string{".yaml", ".yml"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Dir     string // name of the containing day folder, empty for top-level files
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery provides file discovery operations. Every listing is returned in
// lexical name order so that ingestion order is reproducible.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// resolve joins relative directories onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindSourceFiles walks the day folders directly under dir and returns their
// YAML sources: folders in lexical order, files in lexical order within each folder.
func (d *Discovery) FindSourceFiles(dir string) ([]FileInfo, error) {
	days, err := d.ListDirectories(dir)
	if err != nil {
		return nil, err
	}

	var sources []FileInfo
	for _, day := range days {
		files, err := d.findByExtension(day.Path, SourceExtensions)
		if err != nil {
			return nil, err
		}
		for i := range files {
			files[i].Dir = day.Name
		}
		sources = append(sources, files...)
	}
	return sources, nil
}

// FindCSVFiles finds all CSV files in the specified directory
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(d.resolve(dir), []string{".csv"})
}

// ListDirectories lists all subdirectories in the specified directory, skipping hidden ones
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	// os.ReadDir already sorts by name; keep the guarantee explicit
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// findByExtension lists regular files in fullPath whose extension matches, case-insensitively
func (d *Discovery) findByExtension(fullPath string, exts []string) ([]FileInfo, error) {
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

