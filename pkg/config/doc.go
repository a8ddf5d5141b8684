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

/*
Package config loads the corpus description for conformrc.

	            +-------------+
	            |   Config    |
	            |  (Corpus)   |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |           |           |           |
	+-----+-----+ +---+---+ +-----+-----+ +---+-------+
	|   YAML    | |  HCL  | |   JSON    | | Standard  |
	|  Parser   | | Parser| |  Parser   | | (overlay) |
	+-----------+ +-------+ +-----------+ +-----------+

🎯 Purpose:
- Describes which handler modules to migrate (listed or scanned)
- Carries per-file resource, category and action overrides
- Overrides the canonical import set, rate limits and audit tables

🔄 Flow:
1. Load picks a parser by file extension
2. The parser decodes with unknown fields rejected
3. base_dir is resolved relative to the config file
4. Validate fills defaults and rejects malformed values
5. Standard() overlays configured tables on the defaults

🔍 Example:

	cfg, err := config.Load(ctx, ".conformrc.yaml")
	if err != nil {
		return err
	}
	std := cfg.Standard()

A config that cannot be read or parsed is the only fatal error of a run.
*/
package config
