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
Package status records what a run did to each file and owns every write to disk.

	            +-------------+
	            | BatchReport |
	            |  (Outcomes) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|  Manager  |           | Reporter  |
	|  (Files)  |           |  (UI/UX)  |
	+-----------+           +-----------+

🎯 Purpose:
- Classifies each file task as updated, unchanged, not found, failed or skipped
- Keeps outcomes in resolver order so reports are deterministic
- Writes files atomically through a temp file in the same directory

🔄 Flow:
1. The executor reads a file through the Manager
2. Pipeline output is compared with the input
3. Changed content is backed up (optional) and written atomically
4. An Outcome is added to the BatchReport
5. Summarize or WriteJSON projects the report for humans or machines

🤝 Interfaces:
- FileManager: read, exists, atomic write, backup and restore
- FileFormatter: per-outcome console messages

⚠️ Invariants:
- A failed write never leaves a partial file behind
- The report is a pure projection of recorded outcomes
*/
package status
