package advisory

// Table is a keyed lookup that always answers: keys it does not know get the fallback.
type Table struct {
	entries  map[string]string
	fallback string
}

// NewTable copies entries so later changes by the caller are not observed.
func NewTable(fallback string, entries map[string]string) Table {
	t := Table{
		entries:  make(map[string]string, len(entries)),
		fallback: fallback,
	}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the entry for key or the fallback.
func (t Table) Lookup(key string) string {
	if v, ok := t.entries[key]; ok {
		return v
	}
	return t.fallback
}

// Fallback returns the text used for unknown keys.
func (t Table) Fallback() string {
	return t.fallback
}

// Has reports whether key has its own entry.
func (t Table) Has(key string) bool {
	_, ok := t.entries[key]
	return ok
}
