// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "basic substitution",
			template: "Hello {{name}}, your order {{order_id}} shipped.",
			vars:     map[string]string{"name": "Ada", "order_id": "42"},
			want:     "Hello Ada, your order 42 shipped.",
		},
		{
			name:     "unresolved placeholder left as-is",
			template: "Hello {{name}}, discount {{discount}}%",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello Ada, discount {{discount}}%",
		},
		{
			name:     "nil vars",
			template: "Hello {{name}}",
			vars:     nil,
			want:     "Hello {{name}}",
		},
		{
			name:     "empty value substitutes empty string",
			template: "A{{x}}B",
			vars:     map[string]string{"x": ""},
			want:     "AB",
		},
		{
			name:     "repeated placeholder",
			template: "{{x}} and {{x}}",
			vars:     map[string]string{"x": "y"},
			want:     "y and y",
		},
		{
			name:     "no placeholders",
			template: "static text",
			vars:     map[string]string{"x": "y"},
			want:     "static text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.vars))
		})
	}
}

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables("Hi {{name}}, order {{order_id}}; again {{name}}")
	assert.Equal(t, []string{"name", "order_id"}, vars)

	assert.Empty(t, ExtractVariables("no placeholders here"))
}
