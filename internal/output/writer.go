// Package output writes generated files to disk.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrIO matches every error returned by this package.
var ErrIO = errors.New("output error")

// WriteError reports a failed write of one generated file.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrIO }

// Mode decides what Scaffold does with a file that already exists.
type Mode int

const (
	// Force replaces existing files.
	Force Mode = iota
	// SkipIfExists leaves existing files untouched.
	SkipIfExists
)

func (m Mode) String() string {
	switch m {
	case Force:
		return "force"
	case SkipIfExists:
		return "skip-if-exists"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Action is what happened to a file.
type Action string

const (
	Written         Action = "written"
	SkippedExisting Action = "skipped-existing"
	Planned         Action = "planned"
)

// Write creates or replaces relativeFileName under atDirectoryPath, creating
// intermediate directories. The file is written to a temporary sibling and
// renamed into place, so readers never observe partial content.
func Write(relativeFileName, atDirectoryPath string, contents []byte) error {
	fullPath := filepath.Join(atDirectoryPath, filepath.FromSlash(relativeFileName))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: dir, Op: "create directory", Err: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-smokegen-*")
	if err != nil {
		return &WriteError{Path: fullPath, Op: "create temp file for", Err: err}
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
		}
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(contents); err != nil {
		return &WriteError{Path: fullPath, Op: "write", Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &WriteError{Path: fullPath, Op: "sync", Err: err}
	}
	if err := tmpFile.Chmod(fileMode(relativeFileName)); err != nil {
		return &WriteError{Path: fullPath, Op: "chmod", Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &WriteError{Path: fullPath, Op: "close", Err: err}
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, fullPath); err != nil {
		return &WriteError{Path: fullPath, Op: "rename", Err: err}
	}
	success = true
	return nil
}

// Scaffold writes a file under mode. With SkipIfExists an existing file is
// left as is and SkippedExisting is returned.
func Scaffold(mode Mode, relativeFileName, atDirectoryPath string, contents []byte) (Action, error) {
	if mode == SkipIfExists {
		exists, err := Exists(relativeFileName, atDirectoryPath)
		if err != nil {
			return "", err
		}
		if exists {
			return SkippedExisting, nil
		}
	}
	if err := Write(relativeFileName, atDirectoryPath, contents); err != nil {
		return "", err
	}
	return Written, nil
}

// Exists reports whether relativeFileName exists under atDirectoryPath.
func Exists(relativeFileName, atDirectoryPath string) (bool, error) {
	fullPath := filepath.Join(atDirectoryPath, filepath.FromSlash(relativeFileName))
	_, err := os.Stat(fullPath)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &WriteError{Path: fullPath, Op: "stat", Err: err}
	}
}

// ValidateDirectory checks that path is a directory or does not exist yet.
func ValidateDirectory(path string) error {
	stat, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &WriteError{Path: path, Op: "access output directory", Err: err}
	}
	if !stat.IsDir() {
		return &WriteError{Path: path, Op: "use output directory", Err: errors.New("not a directory")}
	}
	return nil
}

func fileMode(relPath string) os.FileMode {
	base := filepath.Base(relPath)
	if strings.HasSuffix(base, ".sh") {
		return 0o755
	}
	return 0o644
}
