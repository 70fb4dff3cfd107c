package model

import "strings"

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields. Names compare
// case-insensitively, while insertion order and the original casing
// survive all the way to the wire. Duplicate names are kept.
type Headers []Field

// Add appends a field.
func (h *Headers) Add(name, value string) {
	*h = append(*h, Field{Name: name, Value: value})
}

// Get returns the value of the first field matching name, or "".
func (h Headers) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether a field matching name exists.
func (h Headers) Has(name string) bool {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Values returns the values of every field matching name, in order.
func (h Headers) Values(name string) []string {
	var vv []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			vv = append(vv, f.Value)
		}
	}
	return vv
}

// Set replaces the first field matching name, drops any further
// matches, and appends when none matched.
func (h *Headers) Set(name, value string) {
	out := make(Headers, 0, len(*h))
	replaced := false
	for _, f := range *h {
		if strings.EqualFold(f.Name, name) {
			if !replaced {
				out = append(out, Field{Name: name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, f)
	}
	if !replaced {
		out = append(out, Field{Name: name, Value: value})
	}
	*h = out
}

// Del removes every field matching name.
func (h *Headers) Del(name string) {
	out := make(Headers, 0, len(*h))
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	*h = out
}

// Clone returns an independent copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}
