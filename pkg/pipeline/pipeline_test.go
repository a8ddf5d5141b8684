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

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/rule"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
)

type stubRule struct {
	name    string
	applies func(string) bool
	apply   func(string) (string, error)
}

func (s *stubRule) Name() string        { return s.name }
func (s *stubRule) Description() string { return s.name }
func (s *stubRule) Marker() string      { return s.name }

func (s *stubRule) Applies(content string, _ task.FileTask) bool {
	return s.applies(content)
}

func (s *stubRule) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	return s.apply(content)
}

// appendRule appends suffix once
func appendRule(name, suffix string) *stubRule {
	return &stubRule{
		name:    name,
		applies: func(c string) bool { return !strings.HasSuffix(c, suffix) },
		apply:   func(c string) (string, error) { return c + suffix, nil },
	}
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func TestRunOrderAndSkip(t *testing.T) {
	p := New([]rule.Rule{
		appendRule("a", "-a"),
		appendRule("b", "x"), // already satisfied by the input
		appendRule("c", "-c"),
	})

	res, err := p.Run(testContext(t), "x", task.FileTask{Path: "f.ts"})
	require.NoError(t, err)

	want := &Result{Content: "x-a-c", Applied: []string{"a", "c"}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, res.Changed())
}

func TestRunRuleError(t *testing.T) {
	boom := errors.New("boom")
	p := New([]rule.Rule{
		appendRule("a", "-a"),
		&stubRule{
			name:    "bad",
			applies: func(string) bool { return true },
			apply:   func(string) (string, error) { return "", boom },
		},
	})

	res, err := p.Run(testContext(t), "x", task.FileTask{})
	require.Error(t, err)
	assert.Nil(t, res, "content is discarded on failure")

	var re *RuleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "bad", re.Rule)
	assert.ErrorIs(t, err, boom)
}

func TestRunRecoversPanics(t *testing.T) {
	tests := []struct {
		name string
		rule *stubRule
	}{
		{
			name: "panic_in_apply",
			rule: &stubRule{
				name:    "apply-panics",
				applies: func(string) bool { return true },
				apply:   func(string) (string, error) { panic("index out of range") },
			},
		},
		{
			name: "panic_in_applies",
			rule: &stubRule{
				name:    "applies-panics",
				applies: func(string) bool { panic("nil map") },
				apply:   func(c string) (string, error) { return c, nil },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]rule.Rule{tt.rule}).Run(testContext(t), "x", task.FileTask{})
			require.Error(t, err)
			var re *RuleError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.rule.name, re.Rule)
			assert.Contains(t, err.Error(), "panic")
		})
	}
}

func TestRunStrictConvergence(t *testing.T) {
	// never settles: appends forever
	loop := &stubRule{
		name:    "loop",
		applies: func(string) bool { return true },
		apply:   func(c string) (string, error) { return c + "!", nil },
	}

	_, err := New([]rule.Rule{loop}).Run(testContext(t), "x", task.FileTask{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConverged)

	res, err := New([]rule.Rule{loop}, WithStrict(false)).Run(testContext(t), "x", task.FileTask{})
	require.NoError(t, err)
	assert.Equal(t, "x!", res.Content, "non-strict pipelines run each rule once")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := New([]rule.Rule{appendRule("a", "-a")}).Run(ctx, "x", task.FileTask{})
	assert.ErrorIs(t, err, context.Canceled)
}

const scenario = `import { NextRequest } from 'next/server';
import { requireTenant } from '@/middleware/tenancy';
import { errorResponse, notFoundProblem } from '@/lib/response';
import { parsePaginationParams } from '@/lib/pagination';

export async function GET(request: NextRequest) {
  const tenantResult = await requireTenant(request);
  if ('error' in tenantResult) {
    return errorResponse(tenantResult.error);
  }
  const { tenantId, user } = tenantResult;
  const { page, limit } = parsePaginationParams(request.nextUrl.searchParams, 25);
  const hotel = await getHotel(tenantId);
  if (!hotel) {
    return errorResponse(notFoundProblem("Hotel not found", request.url));
  }
  return NextResponse.json(hotel);
}
`

func catalogPipeline(t *testing.T) *Pipeline {
	t.Helper()
	m, err := anchor.NewMatcher(anchor.DefaultCacheSize)
	require.NoError(t, err)
	return New(rule.Catalog(standard.Default(), m))
}

func TestScenarioLegacyHandler(t *testing.T) {
	p := catalogPipeline(t)
	ft := task.FileTask{Path: "src/app/api/hotels/route.ts", Resource: "providers", Category: "PROVIDER", Actions: standard.Default().Actions}

	res, err := p.Run(testContext(t), scenario, ft)
	require.NoError(t, err)

	assert.Contains(t, res.Content, "requirePermission(request, 'providers', 'read')")
	assert.Contains(t, res.Content, "parseStandardPaginationParams(request.nextUrl.searchParams, 25)")
	assert.Contains(t, res.Content, `standardErrorResponse(ErrorCodes.NOT_FOUND, "Hotel not found", 404, undefined, requestId)`)
	assert.Contains(t, res.Content, "const requestId = getRequestId(request);")
	assert.Contains(t, res.Content, "globalRateLimitTracker.trackRequest(")
	assert.Contains(t, res.Applied, "permission-replacement")
	assert.NotContains(t, res.Applied, "audit-logging", "GET handlers are not audited")

	again, err := p.Run(testContext(t), res.Content, ft)
	require.NoError(t, err)
	assert.Equal(t, res.Content, again.Content, "a second run is a no-op")
	assert.Empty(t, again.Applied)
}

func TestScenarioAlreadyCorrelated(t *testing.T) {
	m, err := anchor.NewMatcher(anchor.DefaultCacheSize)
	require.NoError(t, err)
	rules, err := rule.Select(rule.Catalog(standard.Default(), m), []string{"correlation-injection"})
	require.NoError(t, err)

	in := "export async function GET(request: NextRequest) {\n  const requestId = getRequestId(request);\n  return NextResponse.json({});\n}\n"
	res, err := New(rules).Run(testContext(t), in, task.FileTask{})
	require.NoError(t, err)
	assert.Equal(t, in, res.Content)
	assert.False(t, res.Changed())
}

const providerHandlers = `import { NextRequest, NextResponse } from 'next/server';
import { requireTenant } from '@/middleware/tenancy';

export async function GET(request: NextRequest) {
  const tenantResult = await requireTenant(request);
  if ('error' in tenantResult) {
    return tenantResult.error;
  }
  const { tenantId } = tenantResult;
  return NextResponse.json(await listProviders(tenantId));
}

export async function POST(request: NextRequest) {
  try {
    const tenantResult = await requireTenant(request);
    if ('error' in tenantResult) {
      return tenantResult.error;
    }
    const { tenantId } = tenantResult;
    const provider = await createProvider(tenantId, await request.json());
    return NextResponse.json(provider, { status: 201 });
  } catch (error) {
    console.error('Failed to create provider', error);
    return NextResponse.json({ error: 'Failed to create provider' }, { status: 500 });
  }
}

export async function DELETE(request: NextRequest) {
  const tenantResult = await requireTenant(request);
  if ('error' in tenantResult) {
    return tenantResult.error;
  }
  const { tenantId } = tenantResult;
  await deleteProvider(tenantId);
  return NextResponse.json({ deleted: true });
}
`

func TestScenarioNextResponseHandlers(t *testing.T) {
	p := catalogPipeline(t)
	ft := task.FileTask{Path: "src/app/api/providers/route.ts", Resource: "providers", Category: "PROVIDER", Actions: standard.Default().Actions}

	res, err := p.Run(testContext(t), providerHandlers, ft)
	require.NoError(t, err)

	assert.NotContains(t, res.Content, "return NextResponse.json(")
	assert.Equal(t, 4, strings.Count(res.Content, "addStandardHeaders(response, requestId);"))
	assert.Contains(t, res.Applied, "audit-logging")

	assert.Contains(t, res.Content, "    const response = NextResponse.json(provider, { status: 201 });\n"+
		"    await auditLog(request, AuditActions.PROVIDER_CREATED, AuditResources.PROVIDER, { requestId });\n"+
		"    addStandardHeaders(response, requestId);")
	assert.Contains(t, res.Content, "  const response = NextResponse.json({ deleted: true });\n"+
		"  await auditLog(request, AuditActions.PROVIDER_DELETED, AuditResources.PROVIDER, { requestId });\n")
	assert.Equal(t, 2, strings.Count(res.Content, "await auditLog("), "reads and catch paths are not audited")

	again, err := p.Run(testContext(t), res.Content, ft)
	require.NoError(t, err)
	assert.Equal(t, res.Content, again.Content)
	assert.Empty(t, again.Applied)
}

func TestScenarioMultiLineLegacyAuth(t *testing.T) {
	p := catalogPipeline(t)
	ft := task.FileTask{Path: "src/app/api/hotels/route.ts", Resource: "providers", Actions: standard.Default().Actions}

	in := `import { NextRequest, NextResponse } from 'next/server';
import { requireTenant } from '@/middleware/tenancy';

export async function GET(request: NextRequest) {
  const tenantResult = await requireTenant(
    request
  );
  if ('error' in tenantResult) {
    return tenantResult.error;
  }
  const { tenantId } = tenantResult;
  return NextResponse.json(await listHotels(tenantId));
}
`
	res, err := p.Run(testContext(t), in, ft)
	require.NoError(t, err)

	assert.NotContains(t, res.Applied, "permission-replacement")
	assert.NotContains(t, res.Content, "requirePermission(")
	assert.Contains(t, res.Content, "  const tenantResult = await requireTenant(\n    request\n  );")

	again, err := p.Run(testContext(t), res.Content, ft)
	require.NoError(t, err)
	assert.Equal(t, res.Content, again.Content)
}
