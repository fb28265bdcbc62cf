package layers

import (
	"sort"
	"strconv"
)

// Fills maps fill keys to colours. It always resolves defaultFill.
type Fills map[string]string

// Default returns the defaultFill colour.
func (f Fills) Default() string {
	if c := f[DefaultFillKey]; c != "" {
		return c
	}
	return DefaultFillColor
}

// Resolve returns the colour registered for key, or defaultFill when the
// key is empty or unknown.
func (f Fills) Resolve(key string) string {
	if key != "" {
		if c, ok := f[key]; ok && c != "" {
			return c
		}
	}
	return f.Default()
}

// Color resolves a recolor value to a literal colour: a string is the
// colour itself, an object supplies it through "color" or else "fillKey".
// An empty result means nothing resolved.
func (f Fills) Color(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		if c, ok := v["color"].(string); ok {
			return c
		}
		if k, ok := v["fillKey"].(string); ok {
			return f[k]
		}
	}
	return ""
}

// Keys returns the fill keys in sorted order.
func (f Fills) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithDefault returns a copy of f guaranteed to hold defaultFill.
func (f Fills) WithDefault() Fills {
	out := make(Fills, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	if out[DefaultFillKey] == "" {
		out[DefaultFillKey] = DefaultFillColor
	}
	return out
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
