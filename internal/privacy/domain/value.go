package domain

import (
	"fmt"
	"sort"
	"time"
)

// ValueKind tags the shape of a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// Value is a tagged union over JSON-shaped data: null, bool, number, string,
// sequence, or mapping. The redaction engine traverses Values instead of raw
// `any` payloads so every shape is handled exhaustively. Values are treated
// as immutable: traversal builds new Values and never mutates the input.
type Value struct {
	kind    ValueKind
	boolVal bool
	numVal  float64
	strVal  string
	seqVal  []Value
	mapVal  []Entry
}

// Entry is a single key/value pair of a mapping. Entry order is preserved by
// traversal; mappings built from Go maps are key-sorted for determinism.
type Entry struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, numVal: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, strVal: s} }

// SequenceValue wraps an ordered sequence.
func SequenceValue(items ...Value) Value { return Value{kind: KindSequence, seqVal: items} }

// MappingValue wraps an ordered set of key/value entries.
func MappingValue(entries ...Entry) Value { return Value{kind: KindMapping, mapVal: entries} }

// Kind reports the shape tag.
func (v Value) Kind() ValueKind { return v.kind }

// Bool returns the wrapped bool (valid for KindBool).
func (v Value) Bool() bool { return v.boolVal }

// Number returns the wrapped number (valid for KindNumber).
func (v Value) Number() float64 { return v.numVal }

// String returns the wrapped string (valid for KindString).
func (v Value) String() string { return v.strVal }

// Sequence returns the wrapped items (valid for KindSequence).
func (v Value) Sequence() []Value { return v.seqVal }

// Mapping returns the wrapped entries (valid for KindMapping).
func (v Value) Mapping() []Entry { return v.mapVal }

// FromAny converts an arbitrary JSON-shaped Go value into a Value. Map keys
// are sorted so conversion is deterministic, and timestamps render as
// RFC3339. Unrecognized types degrade to their string rendering rather than
// failing; redaction must be total.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case bool:
		return BoolValue(v)
	case int:
		return NumberValue(float64(v))
	case int32:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case uint:
		return NumberValue(float64(v))
	case uint32:
		return NumberValue(float64(v))
	case uint64:
		return NumberValue(float64(v))
	case float32:
		return NumberValue(float64(v))
	case float64:
		return NumberValue(v)
	case string:
		return StringValue(v)
	case time.Time:
		return StringValue(v.Format(time.RFC3339))
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, FromAny(item))
		}
		return SequenceValue(items...)
	case []string:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, StringValue(item))
		}
		return SequenceValue(items...)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		entries := make([]Entry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, Entry{Key: key, Value: FromAny(v[key])})
		}
		return MappingValue(entries...)
	case map[string]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		entries := make([]Entry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, Entry{Key: key, Value: StringValue(v[key])})
		}
		return MappingValue(entries...)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

// ToAny converts a Value back into plain Go data (mappings become
// map[string]any), suitable for JSON serialization and structured logging.
func (v Value) ToAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindSequence:
		items := make([]any, 0, len(v.seqVal))
		for _, item := range v.seqVal {
			items = append(items, item.ToAny())
		}
		return items
	case KindMapping:
		m := make(map[string]any, len(v.mapVal))
		for _, entry := range v.mapVal {
			m[entry.Key] = entry.Value.ToAny()
		}
		return m
	default:
		return nil
	}
}
