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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStatusString(t *testing.T) {
	tests := []struct {
		status FileStatus
		want   string
	}{
		{StatusUpdated, "updated"},
		{StatusUnchanged, "unchanged"},
		{StatusNotFound, "not-found"},
		{StatusFailed, "failed"},
		{StatusSkipped, "skipped"},
		{StatusUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestManager_WriteFileAtomic(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_new_file", func(t *testing.T) {
		dir := t.TempDir()
		m := New(dir, nil)

		require.NoError(t, m.WriteFileAtomic(ctx, "route.ts", []byte("export {}\n")))

		content, err := os.ReadFile(filepath.Join(dir, "route.ts"))
		require.NoError(t, err)
		assert.Equal(t, "export {}\n", string(content))
	})

	t.Run("keeps_mode_and_leaves_no_temp_files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "route.ts")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		m := New(dir, nil)
		require.NoError(t, m.WriteFileAtomic(ctx, "route.ts", []byte("new")))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp file should be renamed away")
		assert.Equal(t, "route.ts", entries[0].Name())
	})

	t.Run("fails_for_missing_directory", func(t *testing.T) {
		m := New(t.TempDir(), nil)
		err := m.WriteFileAtomic(ctx, filepath.Join("missing", "route.ts"), []byte("x"))
		assert.Error(t, err)
	})
}

func TestManager_FileExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "route.ts"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "api"), 0o755))

	m := New(dir, nil)

	ok, err := m.FileExists(ctx, "route.ts")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.FileExists(ctx, "nope.ts")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.FileExists(ctx, "api")
	assert.Error(t, err, "directories are not files")
}

func TestManager_ReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "route.ts"), []byte("content"), 0o644))
	m := New(dir, nil)

	content, err := m.ReadFile(context.Background(), "route.ts")
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.ReadFile(ctx, "route.ts")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "route.ts")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	m := New(dir, nil)
	require.NoError(t, m.BackupFile(ctx, "route.ts"))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "original", string(backup))

	require.NoError(t, m.WriteFileAtomic(ctx, "route.ts", []byte("changed")))
	require.NoError(t, m.RestoreFile(ctx, "route.ts"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
	assert.NoFileExists(t, path+".bak")

	// missing files are not an error
	require.NoError(t, m.BackupFile(ctx, "absent.ts"))
	assert.Error(t, m.RestoreFile(ctx, "absent.ts"))
}
