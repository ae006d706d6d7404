package pipeline

// Row is a flat output row that remembers the order in which columns first
// appeared. The batch encoders derive their header from that order, so the
// column universe of a sparse row set stays deterministic.
type Row struct {
	keys   []string
	values map[string]string
}

func NewRow() *Row {
	return &Row{values: map[string]string{}}
}

func (r *Row) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Row) Get(key string) string {
	return r.values[key]
}

func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *Row) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns column names in first-set order. The slice is shared; callers
// iterating while deleting should copy it first.
func (r *Row) Keys() []string {
	return r.keys
}

func (r *Row) Len() int {
	return len(r.keys)
}
