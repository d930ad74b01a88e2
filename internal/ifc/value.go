package ifc

import (
	"fmt"
	"strconv"
)

// Kind identifies the STEP parameter type carried by a Value.
type Kind uint8

const (
	KindNull    Kind = iota // $
	KindDerived             // *
	KindInteger
	KindReal
	KindString
	KindEnum
	KindBinary
	KindRef
	KindList
	KindTyped // e.g. IFCLABEL('x'); Str holds the type keyword, List[0] the wrapped value
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindDerived:
		return "derived"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindBinary:
		return "binary"
	case KindRef:
		return "ref"
	case KindList:
		return "list"
	case KindTyped:
		return "typed"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single attribute value of an entity instance.
type Value struct {
	Kind Kind
	Int  int64
	Real float64
	Str  string
	Ref  int
	List []Value
}

// IsNull reports whether the value is unset ($) or derived (*).
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == KindDerived
}

// Unwrap strips any typed-value wrappers.
func (v Value) Unwrap() Value {
	for v.Kind == KindTyped && len(v.List) == 1 {
		v = v.List[0]
	}
	return v
}

// AsString returns the string payload of a string or enum value.
func (v Value) AsString() (string, bool) {
	v = v.Unwrap()
	switch v.Kind {
	case KindString, KindEnum:
		return v.Str, true
	}
	return "", false
}

// AsFloat returns the numeric payload of an integer or real value.
func (v Value) AsFloat() (float64, bool) {
	v = v.Unwrap()
	switch v.Kind {
	case KindReal:
		return v.Real, true
	case KindInteger:
		return float64(v.Int), true
	}
	return 0, false
}

// AsRef returns the instance id of a reference value.
func (v Value) AsRef() (int, bool) {
	if v.Kind == KindRef {
		return v.Ref, true
	}
	return 0, false
}

// AsList returns the items of an aggregate value.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind == KindList {
		return v.List, true
	}
	return nil, false
}

// Native converts the value to a plain Go value suitable for JSON encoding.
// Booleans and logicals become bool, except logical unknown which becomes
// "UNKNOWN". References become the referenced instance id.
func (v Value) Native() any {
	switch v.Kind {
	case KindNull, KindDerived:
		return nil
	case KindInteger:
		return v.Int
	case KindReal:
		return v.Real
	case KindString, KindBinary:
		return v.Str
	case KindEnum:
		switch v.Str {
		case "T":
			return true
		case "F":
			return false
		case "U":
			return "UNKNOWN"
		}
		return v.Str
	case KindRef:
		return v.Ref
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Native()
		}
		return out
	case KindTyped:
		if len(v.List) == 1 {
			return v.List[0].Native()
		}
		return nil
	}
	return nil
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "$"
	case KindDerived:
		return "*"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindEnum:
		return "." + v.Str + "."
	case KindBinary:
		return `"` + v.Str + `"`
	case KindRef:
		return "#" + strconv.Itoa(v.Ref)
	case KindList:
		return fmt.Sprint(v.List)
	case KindTyped:
		return v.Str + fmt.Sprint(v.List)
	}
	return "?"
}
