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

package opts

import (
	"context"
	"os"
	"sync"

	"github.com/walteh/conformrc/pkg/config"
	"github.com/walteh/conformrc/pkg/log"
	"github.com/walteh/conformrc/pkg/standard"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Console    *log.Logger

	once sync.Once
	cfg  *config.Config
	err  error
}

// Config loads the config file once per process
func (o *RootOpts) Config(ctx context.Context) (*config.Config, error) {
	o.once.Do(func() {
		o.cfg, o.err = config.Load(ctx, o.ConfigFile)
	})
	if o.err != nil {
		return nil, errors.Errorf("loading config: %w", o.err)
	}
	return o.cfg, nil
}

// Standard returns the configured standard, or the default one when no
// config file exists
func (o *RootOpts) Standard(ctx context.Context) (*standard.Standard, error) {
	if _, err := os.Stat(o.ConfigFile); os.IsNotExist(err) {
		return standard.Default(), nil
	}
	cfg, err := o.Config(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.Standard(), nil
}
