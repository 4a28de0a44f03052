package encoding

import (
	"fmt"
	"sort"
)

// Order selects how indices are assigned when a Table is fit.
type Order string

const (
	// OrderSorted assigns indices by byte-wise sorted label, the scheme the
	// reference model's label encoders were fit with.
	OrderSorted Order = "sorted"
	// OrderInsertion assigns indices by first appearance in the catalog.
	OrderInsertion Order = "insertion"
)

// ParseOrder validates a configured order name.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderSorted, OrderInsertion:
		return Order(s), nil
	case "":
		return OrderSorted, nil
	default:
		return "", fmt.Errorf("unknown encoding order %q", s)
	}
}

// Table is a bijection between the distinct labels of one domain and 0..Len()-1.
type Table struct {
	labels []string
	index  map[string]int
}

// Fit builds a Table over the distinct labels in the given order mode.
func Fit(labels []string, order Order) *Table {
	distinct := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		distinct = append(distinct, l)
	}

	if order != OrderInsertion {
		sort.Strings(distinct)
	}

	t := &Table{
		labels: distinct,
		index:  make(map[string]int, len(distinct)),
	}
	for i, l := range distinct {
		t.index[l] = i
	}
	return t
}

// Index returns the index of label.
func (t *Table) Index(label string) (int, bool) {
	i, ok := t.index[label]
	return i, ok
}

// Labels returns labels ordered by index.
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.labels)
}
