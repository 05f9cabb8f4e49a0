package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsString(t *testing.T) {
	p := Params{
		"s":      "  firewall  ",
		"f":      3.0,
		"frac":   2.5,
		"b":      true,
		"list":   []any{"first", "second"},
		"empty":  []any{},
		"absent": nil,
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"string trimmed", "s", "firewall"},
		{"integral float", "f", "3"},
		{"fractional float", "frac", "2.5"},
		{"bool", "b", "true"},
		{"list takes first", "list", "first"},
		{"empty list", "empty", ""},
		{"nil value", "absent", ""},
		{"missing key", "nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.String(tt.key))
		})
	}
}

// TestParamsStringList 强制转列表：标量变单元素列表
func TestParamsStringList(t *testing.T) {
	p := Params{
		"scalar": "firewall",
		"number": 2.0,
		"list":   []any{"a", 3.0, ""},
	}

	assert.Equal(t, []string{"firewall"}, p.StringList("scalar"))
	assert.Equal(t, []string{"2"}, p.StringList("number"))
	assert.Equal(t, []string{"a", "3"}, p.StringList("list"))
	assert.Nil(t, p.StringList("missing"))
}

func TestParamsInt(t *testing.T) {
	p := Params{
		"f":   5.0,
		"s":   " 7 ",
		"bad": "abc",
	}

	assert.Equal(t, 5, p.Int("f", 0))
	assert.Equal(t, 7, p.Int("s", 0))
	assert.Equal(t, 9, p.Int("bad", 9))
	assert.Equal(t, 10, p.Int("missing", 10))
}

func TestParamsIntList(t *testing.T) {
	p := Params{
		"list":   []any{1.0, "2", "x", 3.0},
		"scalar": 4.0,
	}

	assert.Equal(t, []int{1, 2, 3}, p.IntList("list"))
	assert.Equal(t, []int{4}, p.IntList("scalar"))
	assert.Nil(t, p.IntList("missing"))
}
