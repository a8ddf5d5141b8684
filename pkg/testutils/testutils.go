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

// Package testutils holds fixture helpers shared by package tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a logger that writes to the test log
func Context(t testing.TB) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// WriteTree writes each file relative to dir, creating parent directories
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "creating directory for %s", rel)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing %s", rel)
	}
}

// ReadFile returns the content of a file relative to dir
func ReadFile(t testing.TB, dir, rel string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err, "reading %s", rel)
	return string(content)
}

// ModTime returns the modification time of a file relative to dir
func ModTime(t testing.TB, dir, rel string) int64 {
	t.Helper()
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err, "stat %s", rel)
	return info.ModTime().UnixNano()
}
