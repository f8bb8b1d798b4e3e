// Package validation checks the command line tools' input and output
// locations before a run starts, so a typo fails fast with a clear message.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "niftycli/internal/errors"
)

// PathValidator validates the file system locations of a run
type PathValidator struct {
	logger *slog.Logger
}

// NewPathValidator creates a path validator
func NewPathValidator(logger *slog.Logger) *PathValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathValidator{logger: logger.With(slog.String("component", "path_validator"))}
}

// InputDirectory requires dir to exist and be a directory
func (v *PathValidator) InputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return apperrors.NewConfigError(fmt.Sprintf("input directory %s does not exist", dir), err)
	}
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		return apperrors.NewConfigError(fmt.Sprintf("%s is not a directory", dir), nil)
	}
	v.logger.Debug("Input directory validated", slog.String("directory", dir))
	return nil
}

// OutputDirectory creates dir when missing and checks that it is writable
func (v *PathValidator) OutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test.*")
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// OutputFile checks that path has one of the given extensions and that its
// directory is writable
func (v *PathValidator) OutputFile(path string, extensions ...string) error {
	if len(extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		ok := false
		for _, want := range extensions {
			if ext == want {
				ok = true
				break
			}
		}
		if !ok {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("%s must have extension %s", path, strings.Join(extensions, " or ")))
		}
	}
	return v.OutputDirectory(filepath.Dir(path))
}
