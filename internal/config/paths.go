package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolve makes every relative path absolute against BaseDir, which itself
// defaults to the working directory.
func (p *PathsConfig) resolve() error {
	if p.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		p.BaseDir = wd
	}

	for _, field := range []*string{
		&p.RecordsDir, &p.SeriesDir, &p.SectorFile,
		&p.CombinedFile, &p.ReportsDir, &p.LogsDir,
	} {
		if *field != "" && !filepath.IsAbs(*field) {
			*field = filepath.Join(p.BaseDir, *field)
		}
	}
	return nil
}

// ReportFile returns a path inside the reports directory
func (p *PathsConfig) ReportFile(name string) string {
	return filepath.Join(p.ReportsDir, name)
}
