package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, []string{}},
		{"string", "work", []string{"work"}},
		{"empty string", "", []string{""}},
		{"int", 42, []string{"42"}},
		{"float", 3.5, []string{"3.5"}},
		{"bool", true, []string{"true"}},
		{"date", time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), []string{"2023-01-02"}},
		{"timestamp", time.Date(2023, 1, 2, 8, 30, 0, 0, time.UTC), []string{"2023-01-02 08:30:00"}},
		{"string slice", []string{"b", "a", "b"}, []string{"b", "a", "b"}},
		{"mixed slice", []any{"a", 1, 2.5}, []string{"a", "1", "2.5"}},
		{"int slice", []int{1, 2}, []string{"1", "2"}},
		{"empty slice", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToValues(tt.in))
		})
	}
}

func TestToValues_CopiesInput(t *testing.T) {
	in := []string{"a"}
	out := ToValues(in)
	out[0] = "z"
	assert.Equal(t, "a", in[0])
}
