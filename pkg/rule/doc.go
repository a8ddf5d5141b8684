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
Package rule holds the rewrite catalog applied to every route module.

🎯 Purpose:
- One stateless Rule per cross-cutting concern
- Each rule knows its own idempotency marker through Applies
- Rules only read the immutable tables they were built with

📚 Catalog order:
 1. import-normalization
 2. correlation-injection
 3. pagination-renaming
 4. error-canonicalization
 5. permission-replacement
 6. rate-limit-injection
 7. catch-logging
 8. audit-logging
 9. import-pruning

🔒 Contract:
- Applies(Apply(c)) is false for every content c
- Apply is only called when Applies is true
- Anchors the matcher cannot locate mean "nothing to do here"
*/
package rule
