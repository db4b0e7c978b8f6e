package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	meta := map[string]string{
		"language":   "ja",
		"categories": "機械学習,人工知能",
	}

	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"nil matches everything", nil, true},
		{"eq hit", Eq("language", "ja"), true},
		{"eq miss", Eq("language", "en"), false},
		{"eq missing field", Eq("title", ""), true},
		{"contains hit", Contains("categories", "人工知能"), true},
		{"contains miss", Contains("categories", "物理学"), false},
		{"and all hit", And(Eq("language", "ja"), Contains("categories", "機械")), true},
		{"and one miss", And(Eq("language", "ja"), Contains("categories", "物理")), false},
		{"empty and matches everything", And(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(meta))
		})
	}
}

func TestFilterLeaves(t *testing.T) {
	var nilFilter *Filter
	assert.Nil(t, nilFilter.Leaves())

	leaf := Eq("language", "ja")
	assert.Equal(t, []*Filter{leaf}, leaf.Leaves())

	nested := And(leaf, And(Contains("categories", "a"), Eq("title", "b")))
	leaves := nested.Leaves()
	assert.Len(t, leaves, 3)
	for _, l := range leaves {
		assert.NotEqual(t, OpAnd, l.Op)
	}
}
