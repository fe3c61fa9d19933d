// Package headers provides the ordered multi-value map used to store
// article headers.
package headers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Map holds zero or more values per key and remembers the order in
// which keys were first added. A key present in the map always has at
// least one value.
//
// Map is not safe for concurrent mutation.
type Map[K comparable, V comparable] struct {
	keys    []K
	values  map[K]Collection[V]
	factory Factory[V]
}

// New returns an empty map whose per-key collections come from factory.
// A nil factory selects list semantics.
func New[K comparable, V comparable](factory Factory[V]) *Map[K, V] {
	if factory == nil {
		factory = NewList[V]
	}
	return &Map[K, V]{
		values:  make(map[K]Collection[V]),
		factory: factory,
	}
}

// NewListMap keeps duplicate values per key in insertion order.
func NewListMap[K comparable, V comparable]() *Map[K, V] {
	return New[K, V](NewList[V])
}

// NewSetMap absorbs duplicate values per key.
func NewSetMap[K comparable, V comparable]() *Map[K, V] {
	return New[K, V](NewSet[V])
}

func (m *Map[K, V]) init() {
	if m.values == nil {
		m.values = make(map[K]Collection[V])
	}
	if m.factory == nil {
		m.factory = NewList[V]
	}
}

// Add stores value under key, appending key to the key order if it is new.
func (m *Map[K, V]) Add(key K, value V) {
	m.init()
	c, ok := m.values[key]
	if !ok {
		c = m.factory()
		m.values[key] = c
		m.keys = append(m.keys, key)
	}
	c.Add(value)
}

// Remove drops one occurrence of value under key. The key goes away
// with its last value. Missing keys or values are ignored.
func (m *Map[K, V]) Remove(key K, value V) {
	c, ok := m.values[key]
	if !ok {
		return
	}
	c.Remove(value)
	if c.Len() == 0 {
		m.RemoveKey(key)
	}
}

// RemoveKey drops key together with all of its values.
func (m *Map[K, V]) RemoveKey(key K) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Map[K, V]) Clear() {
	m.keys = nil
	m.values = make(map[K]Collection[V])
}

// Count is the total number of key/value pairs, not the number of keys.
func (m *Map[K, V]) Count() int {
	n := 0
	for _, c := range m.values {
		n += c.Len()
	}
	return n
}

// Len is the number of distinct keys.
func (m *Map[K, V]) Len() int { return len(m.keys) }

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Get returns the values stored under key. An absent key yields an
// empty slice.
func (m *Map[K, V]) Get(key K) []V {
	c, ok := m.values[key]
	if !ok {
		return []V{}
	}
	return c.Values()
}

// Collection returns the live collection stored under key. Changes made
// through it show up in m. Emptying it leaves the key in place; use
// Remove or RemoveKey to drop keys.
func (m *Map[K, V]) Collection(key K) (Collection[V], bool) {
	c, ok := m.values[key]
	return c, ok
}

// First returns the first value stored under key.
func (m *Map[K, V]) First(key K) (V, bool) {
	var zero V
	c, ok := m.values[key]
	if !ok {
		return zero, false
	}
	return c.Values()[0], true
}

// Keys returns the keys in first-insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for every pair, keys in insertion order and values in
// collection order, until fn returns false.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, k := range m.keys {
		for _, v := range m.values[k].Values() {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Clone returns a deep copy using the same collection factory.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := New[K, V](m.factory)
	m.Range(func(k K, v V) bool {
		out.Add(k, v)
		return true
	})
	return out
}

// Equal reports whether both maps hold the same keys with equal
// collections. Key order is not compared.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.values) != len(other.values) {
		return false
	}
	for k, c := range m.values {
		oc, ok := other.values[k]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// MarshalJSON emits an object in key order with one array per key.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		// A one-entry map gets the key the same string form encoding/json
		// gives map keys.
		entry, err := json.Marshal(map[K][]V{k: m.values[k].Values()})
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(entry[1 : len(entry)-1])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of m, keeping the document's key
// order.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	m.init()
	m.Clear()
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("headers: expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		k, err := decodeKey[K](tok.(string))
		if err != nil {
			return err
		}
		var vs []V
		if err := dec.Decode(&vs); err != nil {
			return fmt.Errorf("decode values for %v: %w", k, err)
		}
		for _, v := range vs {
			m.Add(k, v)
		}
	}
	_, err = dec.Token()
	return err
}

// decodeKey converts a JSON object key to K using encoding/json's own
// map key rules.
func decodeKey[K comparable](s string) (K, error) {
	var k K
	if p, ok := any(&k).(*string); ok {
		*p = s
		return k, nil
	}
	raw, err := json.Marshal(map[string]struct{}{s: {}})
	if err != nil {
		return k, err
	}
	var one map[K]struct{}
	if err := json.Unmarshal(raw, &one); err != nil {
		return k, fmt.Errorf("decode key %q: %w", s, err)
	}
	for key := range one {
		return key, nil
	}
	return k, fmt.Errorf("decode key %q", s)
}

// MarshalYAML emits a mapping in key order with one sequence per key.
func (m *Map[K, V]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		kn, vn := new(yaml.Node), new(yaml.Node)
		if err := kn.Encode(k); err != nil {
			return nil, fmt.Errorf("encode key %v: %w", k, err)
		}
		if err := vn.Encode(m.values[k].Values()); err != nil {
			return nil, fmt.Errorf("encode values for %v: %w", k, err)
		}
		node.Content = append(node.Content, kn, vn)
	}
	return node, nil
}

// UnmarshalYAML replaces the contents of m, keeping the document's key order.
func (m *Map[K, V]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("headers: expected mapping, got yaml kind %d", value.Kind)
	}
	m.init()
	m.Clear()
	for i := 0; i+1 < len(value.Content); i += 2 {
		var k K
		var vs []V
		if err := value.Content[i].Decode(&k); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&vs); err != nil {
			return err
		}
		for _, v := range vs {
			m.Add(k, v)
		}
	}
	return nil
}
