package service

// tally counts keys while remembering the order they were first seen in
type tally struct {
	order  []string
	counts map[string]int
}

// add counts one occurrence of key. Like append, the returned tally
// replaces the receiver, which must not be used afterwards.
func (t tally) add(key string) tally {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
	return t
}

// Len returns the number of distinct keys
func (t tally) Len() int {
	return len(t.order)
}

// Count returns the occurrences of key
func (t tally) Count(key string) int {
	return t.counts[key]
}
