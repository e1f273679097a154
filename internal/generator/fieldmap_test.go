package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldMapSetKeepsSlot(t *testing.T) {
	m := newFieldMap()
	m.Set("a", FieldSpec{Name: "a", Type: "integer"})
	m.Set("b", FieldSpec{Name: "b", Type: "string"})
	m.Set("a", FieldSpec{Name: "a", Type: "bigInteger"})

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []Entry{
		{Key: "a", Field: FieldSpec{Name: "a", Type: "bigInteger"}},
		{Key: "b", Field: FieldSpec{Name: "b", Type: "string"}},
	}, m.Entries())
}

func TestFieldMapReplace(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		oldKey   string
		newKey   string
		wantKeys []string
	}{
		{name: "rename in place", setup: []string{"a", "b", "c"}, oldKey: "a", newKey: "z", wantKeys: []string{"z", "b", "c"}},
		{name: "same key", setup: []string{"a", "b"}, oldKey: "b", newKey: "b", wantKeys: []string{"a", "b"}},
		{name: "missing old key appends", setup: []string{"a"}, oldKey: "x", newKey: "y", wantKeys: []string{"a", "y"}},
		{name: "new key already present is folded", setup: []string{"a", "b", "c"}, oldKey: "a", newKey: "c", wantKeys: []string{"c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFieldMap()
			for _, k := range tt.setup {
				m.Set(k, FieldSpec{Name: k})
			}

			m.Replace(tt.oldKey, tt.newKey, FieldSpec{Type: "timestamps"})

			var got []string
			for _, e := range m.Entries() {
				got = append(got, e.Key)
			}
			assert.Equal(t, tt.wantKeys, got)

			f, ok := m.Get(tt.newKey)
			assert.True(t, ok)
			assert.Equal(t, "timestamps", f.Type)
			if tt.oldKey != tt.newKey {
				assert.False(t, m.Has(tt.oldKey))
			}
		})
	}
}
