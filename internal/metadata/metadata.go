// Package metadata holds the per-language document metadata loaded from
// metadata.yaml and consumed by the template binder.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hwdocs/go-md2tex/internal/yamlutil"
)

// Sentinel errors for metadata loading.
var (
	ErrMetadataNotFound = errors.New("metadata file not found")
	ErrMetadataParse    = errors.New("failed to parse metadata")
)

// Map is an ordered, read-only mapping from key to value.
// Values are strings, bools, numbers, []any, nested *Map, or nil.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: map[string]any{}}
}

// FromPairs builds a Map from alternating key/value arguments.
// Intended for tests and defaults; panics on an odd argument count.
func FromPairs(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("metadata: FromPairs needs an even number of arguments")
	}
	m := New()
	for i := 0; i < len(kv); i += 2 {
		m.set(fmt.Sprint(kv[i]), normalize(kv[i+1]))
	}
	return m
}

// FromMap builds a Map from a plain Go map, with keys in sorted order.
func FromMap(src map[string]any) *Map {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := New()
	for _, k := range keys {
		m.set(k, normalize(src[k]))
	}
	return m
}

// Parse decodes YAML metadata, keeping document key order.
// Empty input yields an empty Map.
func Parse(data []byte) (*Map, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}
	pairs, err := yamlutil.DecodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataParse, err)
	}
	return fromPairs(pairs), nil
}

// Load reads and parses a metadata.yaml file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- discovered language directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func fromPairs(pairs []yamlutil.KeyValue) *Map {
	m := New()
	for _, p := range pairs {
		m.set(p.Key, fromYAML(p.Value))
	}
	return m
}

func fromYAML(v any) any {
	switch val := v.(type) {
	case []yamlutil.KeyValue:
		return fromPairs(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromYAML(item)
		}
		return out
	default:
		return v
	}
}

func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return FromMap(val)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

func (m *Map) set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Len returns the number of top-level keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns top-level keys in document order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns a top-level value.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Lookup resolves a plain or dotted key ("license.type") by walking nested
// maps one segment at a time. A missing segment reports false.
func (m *Map) Lookup(path string) (any, bool) {
	segments := strings.Split(path, ".")
	cur := m
	for i, seg := range segments {
		v, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, ok := v.(*Map)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// With returns a copy of m with key set to value. m is not modified.
func (m *Map) With(key string, value any) *Map {
	out := New()
	if m != nil {
		for _, k := range m.keys {
			out.set(k, m.values[k])
		}
	}
	out.set(key, normalize(value))
	return out
}

// Truthy reports whether a value enables a conditional block:
// not nil, not false, not empty, not zero, not the strings "false" or "0".
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		s := strings.TrimSpace(strings.ToLower(val))
		return s != "" && s != "false" && s != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case uint64:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case *Map:
		return val.Len() > 0
	default:
		return true
	}
}

// Format renders a value as template text. Sequences are joined with
// ", "; nested maps and nil render empty.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format("2006-01-02")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := Format(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case *Map:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
