package values

import (
	"fmt"
	"sort"

	"github.com/mitchellh/copystructure"
)

// Bag is the keyed collection accessors read from. A nil Bag is empty.
type Bag map[string]any

func (b Bag) Get(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Keys returns the keys in sorted order.
func (b Bag) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the bag.
func (b Bag) Clone() (Bag, error) {
	if b == nil {
		return nil, nil
	}
	cloned, err := copystructure.Copy(b)
	if err != nil {
		return nil, err
	}
	out, ok := cloned.(Bag)
	if !ok {
		return nil, fmt.Errorf("values: failed to cast cloned value %T to Bag", cloned)
	}
	return out, nil
}
