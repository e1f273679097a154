package generator

// fieldMap is an insertion-ordered map of field specs. Setting an existing
// key rewrites the entry in its original slot.
type fieldMap struct {
	keys   []string
	fields map[string]FieldSpec
}

func newFieldMap() *fieldMap {
	return &fieldMap{fields: make(map[string]FieldSpec)}
}

func (m *fieldMap) Set(key string, f FieldSpec) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = f
}

// Replace stores f under newKey in the slot held by oldKey. Without an
// oldKey entry it behaves like Set.
func (m *fieldMap) Replace(oldKey, newKey string, f FieldSpec) {
	if newKey != oldKey {
		m.remove(newKey)
	}

	pos := m.position(oldKey)
	if pos < 0 {
		m.Set(newKey, f)
		return
	}

	delete(m.fields, oldKey)
	m.keys[pos] = newKey
	m.fields[newKey] = f
}

func (m *fieldMap) Get(key string) (FieldSpec, bool) {
	f, ok := m.fields[key]
	return f, ok
}

func (m *fieldMap) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

func (m *fieldMap) Len() int {
	return len(m.keys)
}

// Entries returns the fields in insertion order
func (m *fieldMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, Entry{Key: k, Field: m.fields[k]})
	}
	return entries
}

func (m *fieldMap) position(key string) int {
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

func (m *fieldMap) remove(key string) {
	i := m.position(key)
	if i < 0 {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	delete(m.fields, key)
}
