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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/conformrc/pkg/testutils"
)

const legacyHotels = `import { NextRequest } from 'next/server';
import { requireTenant } from '@/middleware/tenancy';
import { errorResponse, successResponse, notFoundProblem, internalServerErrorProblem } from '@/lib/response';
import { parsePaginationParams, buildPagedResponse } from '@/lib/pagination';

export async function GET(request: NextRequest) {
  try {
    const tenantResult = await requireTenant(request);
    if ('error' in tenantResult) {
      return errorResponse(tenantResult.error);
    }
    const { tenantId, user } = tenantResult;

    const { page, pageSize } = parsePaginationParams(request.nextUrl.searchParams);
    const hotel = await findHotel(tenantId, page);
    if (!hotel) {
      return errorResponse(notFoundProblem('Hotel not found', request.url));
    }
    return successResponse(buildPagedResponse([hotel], 1, page, pageSize));
  } catch (error) {
    console.error('Failed to fetch hotels', error);
    return errorResponse(internalServerErrorProblem('Failed to fetch hotels'));
  }
}

export async function POST(request: NextRequest) {
  try {
    const tenantResult = await requireTenant(request);
    if ('error' in tenantResult) {
      return errorResponse(tenantResult.error);
    }
    const { tenantId } = tenantResult;
    const body = await request.json();
    const hotel = await createHotel(tenantId, body);
    return successResponse(hotel, 201);
  } catch (error) {
    console.error('Failed to create hotel', error);
    return errorResponse(internalServerErrorProblem('Failed to create hotel'));
  }
}

export async function DELETE(req: NextRequest) {
  try {
    const auth = await requireTenant(req);
    if ('error' in auth) {
      return errorResponse(auth.error);
    }
    const { tenantId, user: actor } = auth;
    await deleteHotel(tenantId, actor.userId);
    return successResponse({ deleted: true });
  } catch (err) {
    console.error('Failed to delete hotel', err);
    return errorResponse(internalServerErrorProblem('Failed to delete hotel'));
  }
}
`

const hotelsConfig = `files:
  - path: src/app/api/hotels/route.ts
    resource: providers
    category: PROVIDER
  - path: src/app/api/missing/route.ts
    resource: providers
  - path: src/app/api/auth/login/route.ts
    resource: auth
skip:
  - /api/auth
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteTree(t, dir, map[string]string{
		".conformrc.yaml":                 hotelsConfig,
		"src/app/api/hotels/route.ts":     legacyHotels,
		"src/app/api/auth/login/route.ts": legacyHotels,
	})
	return dir, filepath.Join(dir, ".conformrc.yaml")
}

func TestRunCommand(t *testing.T) {
	dir, cfgPath := writeProject(t)
	reportPath := filepath.Join(dir, "out", "report.json")

	out, err := execute(t, "run", "--config", cfgPath, "--report", reportPath)
	require.NoError(t, err, "per-file failures do not fail the run: %s", out)

	migrated := testutils.ReadFile(t, dir, "src/app/api/hotels/route.ts")
	assert.NotEqual(t, legacyHotels, migrated)
	assert.Contains(t, migrated, "requirePermission(request, 'providers', 'read')")
	assert.Contains(t, migrated, "const requestId = getRequestId(request);")
	assert.NotContains(t, migrated, "requireTenant(")
	assert.Equal(t, legacyHotels, testutils.ReadFile(t, dir, "src/app/api/auth/login/route.ts"), "skipped files are untouched")
	assert.Contains(t, out, "1 files were not migrated")

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report struct {
		Counts struct {
			Total    int `json:"total"`
			Updated  int `json:"updated"`
			NotFound int `json:"not_found"`
			Skipped  int `json:"skipped"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 3, report.Counts.Total)
	assert.Equal(t, 1, report.Counts.Updated)
	assert.Equal(t, 1, report.Counts.NotFound)
	assert.Equal(t, 1, report.Counts.Skipped)

	// a second run over migrated output changes nothing
	textReport := filepath.Join(dir, "report.txt")
	_, err = execute(t, "run", "--config", cfgPath, "--report", textReport, "--parallel", "2")
	require.NoError(t, err)
	assert.Equal(t, migrated, testutils.ReadFile(t, dir, "src/app/api/hotels/route.ts"))
	summary := testutils.ReadFile(t, dir, "report.txt")
	assert.Contains(t, summary, "total: 3, updated: 0, unchanged: 1, not-found: 1, failed: 0, skipped: 1")
}

func TestPlanCommand(t *testing.T) {
	dir, cfgPath := writeProject(t)

	out, err := execute(t, "plan", "--config", cfgPath, "--diff")
	require.NoError(t, err)

	assert.Equal(t, legacyHotels, testutils.ReadFile(t, dir, "src/app/api/hotels/route.ts"), "plan never writes")
	assert.Contains(t, out, "--- a/src/app/api/hotels/route.ts")
	assert.Contains(t, out, "requirePermission(request, 'providers', 'read')")
	assert.Contains(t, out, "1 files would change")
}

func TestRunCommand_selected_rules(t *testing.T) {
	dir, cfgPath := writeProject(t)

	_, err := execute(t, "run", "--config", cfgPath, "--rules", "pagination-renaming")
	require.NoError(t, err)

	migrated := testutils.ReadFile(t, dir, "src/app/api/hotels/route.ts")
	assert.Contains(t, migrated, "parseStandardPaginationParams(request.nextUrl.searchParams)")
	assert.Contains(t, migrated, "requireTenant(", "other rules did not run")

	_, err = execute(t, "run", "--config", cfgPath, "--rules", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rules: nope")
}

func TestRunCommand_config_errors(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")

	dir := t.TempDir()
	testutils.WriteTree(t, dir, map[string]string{".conformrc.yaml": "files: [\n"})
	_, err = execute(t, "run", "--config", filepath.Join(dir, ".conformrc.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML")
}

func TestConfigFromEnvironment(t *testing.T) {
	dir, cfgPath := writeProject(t)
	t.Setenv(envConfig, cfgPath)

	_, err := execute(t, "run")
	require.NoError(t, err)
	assert.NotEqual(t, legacyHotels, testutils.ReadFile(t, dir, "src/app/api/hotels/route.ts"))
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	for _, name := range []string{
		"import-normalization",
		"correlation-injection",
		"pagination-renaming",
		"error-canonicalization",
		"permission-replacement",
		"rate-limit-injection",
		"catch-logging",
		"audit-logging",
		"import-pruning",
	} {
		assert.Contains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "conformrc version info")
}
