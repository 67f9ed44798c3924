package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		tokens  []string
		want    []Edit
	}{
		{
			name:    "identical",
			current: []string{"a", "b"},
			tokens:  []string{"a", "b"},
			want:    nil,
		},
		{
			name:    "shrink",
			current: []string{"a", "b", "c"},
			tokens:  []string{"a", "b"},
			want:    []Edit{{Kind: EditTruncate, Index: 2}},
		},
		{
			name:    "grow",
			current: []string{"a"},
			tokens:  []string{"a", "b"},
			want:    []Edit{{Kind: EditAppend, Index: 1, Text: "b"}},
		},
		{
			name:    "update and truncate",
			current: []string{"a", "b", "c"},
			tokens:  []string{"x"},
			want: []Edit{
				{Kind: EditTruncate, Index: 1},
				{Kind: EditUpdate, Index: 0, Text: "x"},
			},
		},
		{
			name:    "from empty",
			current: nil,
			tokens:  []string{"a"},
			want:    []Edit{{Kind: EditAppend, Index: 0, Text: "a"}},
		},
		{
			name:    "to empty",
			current: []string{"a"},
			tokens:  nil,
			want:    []Edit{{Kind: EditTruncate, Index: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.current, tt.tokens))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Tokenize("  a\tb \n c "))
	assert.Empty(t, Tokenize("   "))
}
