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
Package anchor locates structural landmarks inside route-handler source text.

	+------------------+      +-----------------+
	|  import block    |      |  entry points   |
	|  (ParseImports)  |      |  (EntryPoints)  |
	+--------+---------+      +--------+--------+
	         |                         |
	         +-----------+-------------+
	                     |
	              +------+------+
	              |   Matcher   |
	              | (LRU cache) |
	              +------+------+
	                     |
	        Locate / LocateAll(content, Spec)

🎯 Purpose:
- Find import statements, handler signatures, auth destructures, calls and catch blocks
- Report a miss as "not found", never as an error
- Keep every lookup read-only

🔄 Flow:
1. A rule builds a Spec (optionally windowed with Within)
2. The Matcher compiles or reuses the pattern for that Spec
3. A delimiter scanner balances parens and braces past strings and comments
4. Offsets come back absolute so rules can splice edits directly

📏 Limits:
- Calls must close on the line they open, with one nested paren level at most
- Catch bodies may nest one brace level
- Anything beyond these limits is reported as not found
*/
package anchor
