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
Package pipeline runs the rule catalog over one file's content.

	content ──▶ rule 1 ──▶ rule 2 ──▶ ... ──▶ rule N ──▶ content'
	              │           │                  │
	          Applies?    Applies?           Applies?
	           no: skip    yes: Apply        (strict: must be false after Apply)

🎯 Purpose:
- Apply rules strictly in catalog order, each at most once
- Turn rule errors and panics into a *RuleError so the file is left untouched
- Log every rule decision at debug level through the context logger
*/
package pipeline
