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
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/conformrc/pkg/rule"
	"github.com/walteh/conformrc/pkg/task"
)

// 💥 RuleError is a rule that failed, panicked or did not converge on one file
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// ErrNotConverged means a rule still applied to its own output
var ErrNotConverged = errors.New("rule still applies after apply")

// Result is the pipeline output for one file
type Result struct {
	Content string
	Applied []string
}

// Changed reports whether any rule applied
func (r *Result) Changed() bool {
	return len(r.Applied) > 0
}

// 🔄 Pipeline applies a fixed rule sequence to one file at a time
type Pipeline struct {
	rules  []rule.Rule
	strict bool
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithStrict toggles the convergence check, on by default
func WithStrict(strict bool) Option {
	return func(p *Pipeline) {
		p.strict = strict
	}
}

// 🏭 New creates a pipeline over rules in the given order
func New(rules []rule.Rule, opts ...Option) *Pipeline {
	p := &Pipeline{rules: rules, strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules returns the rules in application order
func (p *Pipeline) Rules() []rule.Rule {
	return p.rules
}

// 🏃 Run applies every applicable rule once, in order. Any rule failure
// discards the file's content and returns a *RuleError.
func (p *Pipeline) Run(ctx context.Context, content string, t task.FileTask) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", t.Path).Logger()

	res := &Result{Content: content}
	for _, r := range p.rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("running pipeline: %w", err)
		}

		applies, err := p.applies(r, res.Content, t)
		if err != nil {
			return nil, err
		}
		if !applies {
			logger.Debug().Str("rule", r.Name()).Msg("rule not applicable")
			continue
		}

		out, err := p.apply(ctx, r, res.Content, t)
		if err != nil {
			logger.Debug().Err(err).Str("rule", r.Name()).Msg("rule failed")
			return nil, err
		}

		if p.strict {
			again, err := p.applies(r, out, t)
			if err != nil {
				return nil, err
			}
			if again {
				return nil, &RuleError{Rule: r.Name(), Err: ErrNotConverged}
			}
		}

		logger.Debug().Str("rule", r.Name()).Int("delta", len(out)-len(res.Content)).Msg("rule applied")
		if out != res.Content {
			res.Applied = append(res.Applied, r.Name())
		}
		res.Content = out
	}
	return res, nil
}

func (p *Pipeline) apply(ctx context.Context, r rule.Rule, content string, t task.FileTask) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &RuleError{Rule: r.Name(), Err: errors.Errorf("panic: %v", rec)}
		}
	}()

	out, err = r.Apply(ctx, content, t)
	if err != nil {
		return "", &RuleError{Rule: r.Name(), Err: err}
	}
	return out, nil
}

func (p *Pipeline) applies(r rule.Rule, content string, t task.FileTask) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &RuleError{Rule: r.Name(), Err: errors.Errorf("panic: %v", rec)}
		}
	}()
	return r.Applies(content, t), nil
}
