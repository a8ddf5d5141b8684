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

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&JSONParser{})
}

// 🔧 JSONParser reads conformrc.json style configs
type JSONParser struct{}

func (p *JSONParser) CanParse(filename string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse decodes exactly one config object.
// Unknown keys, an empty document and anything after the object are errors.
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("parsing JSON: empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return nil, errors.Errorf("parsing JSON: line %d: %w", lineAt(data, syntax.Offset), err)
		}
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("parsing JSON: trailing data after config object")
	}

	zerolog.Ctx(ctx).Trace().Int("files", len(cfg.Files)).Bool("scan", cfg.Scan != nil).Msg("parsed JSON config")
	return cfg, nil
}

// lineAt returns the 1-based line of a byte offset
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + bytes.Count(data[:offset], []byte("\n"))
}
