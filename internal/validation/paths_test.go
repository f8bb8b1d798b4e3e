package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "niftycli/internal/errors"
	"niftycli/internal/infrastructure"
)

func TestPathValidator_InputDirectory(t *testing.T) {
	v := NewPathValidator(infrastructure.NewTestLogger(nil))
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, v.InputDirectory(dir))

	err := v.InputDirectory(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "does not exist")

	err = v.InputDirectory(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestPathValidator_OutputDirectory(t *testing.T) {
	v := NewPathValidator(nil)
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, v.OutputDirectory(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file must be removed")
}

func TestPathValidator_OutputFile(t *testing.T) {
	v := NewPathValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.OutputFile(filepath.Join(dir, "out", "report.xlsx"), ".xlsx"))
	assert.NoError(t, v.OutputFile(filepath.Join(dir, "REPORT.XLSX"), ".xlsx"))
	assert.NoError(t, v.OutputFile(filepath.Join(dir, "any.bin")))

	err := v.OutputFile(filepath.Join(dir, "report.csv"), ".xlsx")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
