package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a raw metadata value. The set is closed:
// extraction backends must coerce whatever their library hands them into one
// of these before it enters a Raw table.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBytes
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindSeq:
		return "seq"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a single raw metadata value. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bytes []byte
	Seq   []Value
}

func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Bytes(b []byte) Value  { return Value{Kind: KindBytes, Bytes: b} }
func Seq(vs ...Value) Value { return Value{Kind: KindSeq, Seq: vs} }

// First unwraps one level of sequence, returning the head element. Scalar
// values return themselves. An empty sequence returns an empty string value.
func (v Value) First() Value {
	if v.Kind != KindSeq {
		return v
	}
	if len(v.Seq) == 0 {
		return String("")
	}
	return v.Seq[0]
}

// Text renders the value as a plain string the way the mapping layer sees it:
// sequences collapse to their first element, bytes are interpreted as raw
// text (cleaning is the string-clean transform's job).
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBytes:
		return string(v.Bytes)
	case KindSeq:
		if len(v.Seq) == 0 {
			return ""
		}
		return v.Seq[0].Text()
	}
	return ""
}

// AsFloat reports the numeric reading of the value. Sequences read their
// first element; strings only convert when the whole string is a number.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindSeq:
		if len(v.Seq) == 0 {
			return 0, false
		}
		return v.Seq[0].AsFloat()
	}
	return 0, false
}

// AsInt is AsFloat restricted to integral values.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindSeq:
		if len(v.Seq) == 0 {
			return 0, false
		}
		return v.Seq[0].AsInt()
	}
	f, ok := v.AsFloat()
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// IsNumeric reports whether the value reads as a number without any
// extraction heuristics.
func (v Value) IsNumeric() bool {
	_, ok := v.AsFloat()
	return ok
}

// Native returns the value as the nearest plain Go type, used when a value is
// placed into a header document verbatim.
func (v Value) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBytes:
		return string(v.Bytes)
	case KindSeq:
		out := make([]any, 0, len(v.Seq))
		for _, e := range v.Seq {
			out = append(out, e.Native())
		}
		return out
	}
	return nil
}

// MarshalJSON writes the natural JSON form: strings and numbers as scalars,
// sequences as arrays, bytes as a string. The byte interpretation is lossy
// for non-UTF-8 payloads, which is acceptable for the extraction report.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON accepts the report form written by MarshalJSON. Numbers
// without a fractional part become KindInt, everything else numeric becomes
// KindFloat. Booleans and nulls degrade to strings; neither occurs in TIFF
// tag data.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromDecoded(raw)
	return nil
}

func fromDecoded(raw any) Value {
	switch x := raw.(type) {
	case string:
		return String(x)
	case json.Number:
		if i, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return Int(i)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case bool:
		return String(strconv.FormatBool(x))
	case []any:
		vs := make([]Value, 0, len(x))
		for _, e := range x {
			vs = append(vs, fromDecoded(e))
		}
		return Seq(vs...)
	case nil:
		return String("")
	}
	return String(fmt.Sprint(raw))
}
