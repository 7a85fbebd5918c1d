// Package yamlutil wraps YAML parsing to isolate the external dependency.
// This allows swapping the underlying YAML library without modifying callers.
package yamlutil

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: top-level value is not a mapping")
)

// KeyValue is one entry of an ordered mapping.
// Nested mappings are represented as []KeyValue, sequences as []any.
type KeyValue struct {
	Key   string
	Value any
}

func validateSize(data []byte) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

func validateInput(data []byte, v any) error {
	if err := validateSize(data); err != nil {
		return err
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// DecodeOrdered parses a YAML mapping and keeps the document key order.
// A document that is only comments or null decodes to an empty slice.
func DecodeOrdered(data []byte) ([]KeyValue, error) {
	if err := validateSize(data); err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if raw == nil {
		return []KeyValue{}, nil
	}

	ms, ok := raw.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, raw)
	}
	return convertMapSlice(ms), nil
}

func convertMapSlice(ms yaml.MapSlice) []KeyValue {
	out := make([]KeyValue, 0, len(ms))
	for _, item := range ms {
		out = append(out, KeyValue{
			Key:   fmt.Sprint(item.Key),
			Value: convertValue(item.Value),
		})
	}
	return out
}

func convertValue(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		return convertMapSlice(val)
	case map[string]any:
		// Source order is lost for plain maps; sort for stable output.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]KeyValue, 0, len(val))
		for _, k := range keys {
			out = append(out, KeyValue{Key: k, Value: convertValue(val[k])})
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	default:
		return v
	}
}
