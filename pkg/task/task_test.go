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

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/conformrc/pkg/standard"
)

func TestFileTaskAction(t *testing.T) {
	ft := FileTask{
		Path:     "src/app/api/hotels/route.ts",
		Resource: "providers",
		Actions:  standard.Default().Actions,
	}

	tests := []struct {
		method string
		want   string
		ok     bool
	}{
		{method: "GET", want: "read", ok: true},
		{method: "post", want: "create", ok: true},
		{method: "PATCH", want: "update", ok: true},
		{method: "DELETE", want: "delete", ok: true},
		{method: "OPTIONS", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := ft.Action(tt.method)
			assert.Equal(t, tt.ok, ok, "lookup result should match")
			assert.Equal(t, tt.want, got, "action should match")
		})
	}
}
