// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus is the outcome of one file task
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusUpdated              // Rules changed the content and it was written
	StatusUnchanged            // Pipeline output equals the input
	StatusNotFound             // Task path does not exist
	StatusFailed               // Read, rule or write failure
	StatusSkipped              // Excluded by the skip list or missing metadata
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusNotFound:
		return "not-found"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in reports
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 🚨 ErrorKind classifies a failed or missing file
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindFileNotFound
	KindReadWriteFailure
	KindRuleApplicationFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFound"
	case KindReadWriteFailure:
		return "ReadWriteFailure"
	case KindRuleApplicationFailure:
		return "RuleApplicationFailure"
	default:
		return ""
	}
}

// MarshalText renders the kind by name in reports
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// 💾 FileManager handles all file system operations of a run
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	FileExists(ctx context.Context, path string) (bool, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
	RestoreFile(ctx context.Context, path string) error
}

var _ FileManager = (*Manager)(nil)

// 🔧 Manager implements FileManager rooted at a base directory
type Manager struct {
	baseDir string
	logger  *zerolog.Logger
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		logger:  logger,
	}
}

// BaseDir returns the directory every task path is relative to
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔒 getAbsPath returns the absolute path for a given relative path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(m.getAbsPath(path))
	if err == nil {
		if info.IsDir() {
			return false, errors.Errorf("%s is a directory", path)
		}
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// WriteFileAtomic writes to a temp file next to the target and renames it
// over the target, so readers see either the old or the new content.
// The target's permission bits are kept.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	mode := os.FileMode(0o644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	m.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}

func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + ".bak"

	// Only backup if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	if err := copyFile(absPath, backupPath); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	return nil
}

func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + ".bak"

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return errors.Errorf("backup file does not exist")
	} else if err != nil {
		return errors.Errorf("checking backup existence: %w", err)
	}

	if err := copyFile(backupPath, absPath); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}
	return nil
}
