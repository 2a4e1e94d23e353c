package normalizer

import "aarcnorm/internal/models"

// Enumerator assigns dense integer ids to distinct values in first-seen
// order, starting at a fixed base. Labels maps ids back to values.
type Enumerator struct {
	base   int64
	ids    map[string]int64
	values []string
}

// NewEnumerator creates an enumerator whose first id is base.
func NewEnumerator(base int64) *Enumerator {
	return &Enumerator{base: base, ids: make(map[string]int64)}
}

// ID returns the id of v, assigning the next one if v is new.
func (e *Enumerator) ID(v string) int64 {
	if id, ok := e.ids[v]; ok {
		return id
	}

	id := e.base + int64(len(e.values))
	e.ids[v] = id
	e.values = append(e.values, v)

	return id
}

// Lookup returns the id of v without assigning one.
func (e *Enumerator) Lookup(v string) (int64, bool) {
	id, ok := e.ids[v]
	return id, ok
}

// Labels returns the id→value mapping in id order.
func (e *Enumerator) Labels() []models.Label {
	labels := make([]models.Label, len(e.values))
	for i, v := range e.values {
		labels[i] = models.Label{ID: e.base + int64(i), Value: v}
	}

	return labels
}
