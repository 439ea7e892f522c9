package mpv

import (
	"encoding/json"
	"math"
	"strconv"
)

// Format is the representation requested from or carried by a Node.
type Format int

const (
	FormatNone Format = iota
	FormatFlag
	FormatInt64
	FormatDouble
	FormatString
	FormatList
	FormatMap
	// FormatNode accepts whatever the backend holds.
	FormatNode
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatFlag:
		return "flag"
	case FormatInt64:
		return "int64"
	case FormatDouble:
		return "double"
	case FormatString:
		return "string"
	case FormatList:
		return "list"
	case FormatMap:
		return "map"
	case FormatNode:
		return "node"
	default:
		return "unknown"
	}
}

// Node is a backend value: nothing, a flag, an int64, a double, a string,
// or a list or map of nodes. The zero Node is FormatNone.
type Node struct {
	v any
}

func Flag(b bool) Node { return Node{v: b} }

func Int(i int64) Node { return Node{v: i} }

func Double(d float64) Node { return Node{v: d} }

func String(s string) Node { return Node{v: s} }

func List(items ...Node) Node { return Node{v: items} }

func Map(entries map[string]Node) Node { return Node{v: entries} }

// Format reports the kind of value held.
func (n Node) Format() Format {
	switch n.v.(type) {
	case bool:
		return FormatFlag
	case int64:
		return FormatInt64
	case float64:
		return FormatDouble
	case string:
		return FormatString
	case []Node:
		return FormatList
	case map[string]Node:
		return FormatMap
	default:
		return FormatNone
	}
}

func (n Node) IsNone() bool {
	return n.Format() == FormatNone
}

func (n Node) AsFlag() (bool, bool) {
	b, ok := n.v.(bool)
	return b, ok
}

// AsInt accepts int64 and double values; doubles are truncated toward zero.
func (n Node) AsInt() (int64, bool) {
	switch v := n.v.(type) {
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// AsDouble accepts double and int64 values.
func (n Node) AsDouble() (float64, bool) {
	switch v := n.v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (n Node) AsString() (string, bool) {
	s, ok := n.v.(string)
	return s, ok
}

func (n Node) AsList() ([]Node, bool) {
	l, ok := n.v.([]Node)
	return l, ok
}

func (n Node) AsMap() (map[string]Node, bool) {
	m, ok := n.v.(map[string]Node)
	return m, ok
}

// Get returns the map entry for key, or a none Node.
func (n Node) Get(key string) Node {
	m, _ := n.AsMap()
	return m[key]
}

// Convert returns n in the requested format, converting between
// numbers and rendering scalars as strings the way mpv does.
func (n Node) Convert(format Format) (Node, error) {
	if format == FormatNode || format == n.Format() {
		return n, nil
	}

	switch format {
	case FormatInt64:
		if i, ok := n.AsInt(); ok {
			return Int(i), nil
		}
	case FormatDouble:
		if d, ok := n.AsDouble(); ok {
			return Double(d), nil
		}
	case FormatString:
		switch n.Format() {
		case FormatFlag, FormatInt64, FormatDouble:
			return String(n.String()), nil
		}
	}

	return Node{}, ErrPropertyFormat
}

// String renders n for diagnostics and for backend options.
func (n Node) String() string {
	switch v := n.v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		raw, err := json.Marshal(n.JSON())
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// JSON returns n as a value encoding/json can marshal.
func (n Node) JSON() any {
	switch v := n.v.(type) {
	case []Node:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item.JSON()
		}
		return out
	case map[string]Node:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = item.JSON()
		}
		return out
	default:
		return v
	}
}

// FromJSON converts a value decoded by encoding/json into a Node.
// Numbers become doubles.
func FromJSON(v any) Node {
	switch v := v.(type) {
	case bool:
		return Flag(v)
	case float64:
		return Double(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i)
		}
		f, _ := v.Float64()
		return Double(f)
	case string:
		return String(v)
	case []any:
		items := make([]Node, len(v))
		for i, item := range v {
			items[i] = FromJSON(item)
		}
		return List(items...)
	case map[string]any:
		entries := make(map[string]Node, len(v))
		for k, item := range v {
			entries[k] = FromJSON(item)
		}
		return Map(entries)
	default:
		return Node{}
	}
}
