// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindEmpty is a cell with no content.
	KindEmpty Kind = iota

	// KindText holds an arbitrary string.
	KindText

	// KindNumber holds a float64.
	KindNumber

	// KindBool holds a boolean.
	KindBool

	// KindDateTime holds a timestamp.
	KindDateTime

	// KindError holds a failure reason produced by a coercion or
	// calculation (e.g. division by zero). Error values are data, not
	// Go errors: they flow through the grid like any other value.
	KindError
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar cell value.
//
// # Description
//
// Value is a variant over empty, text, number, boolean, datetime and error
// states. Exactly one variant is populated; the active variant is reported
// by Kind(). The zero Value is the empty variant.
//
// Arithmetic and date operations must check Kind explicitly; there is no
// implicit coercion. Failed coercions are represented as error *values*
// (KindError), never as panics.
//
// # Thread Safety
//
// Value is an immutable value type and safe to copy and share.
type Value struct {
	kind   Kind
	text   string
	number float64
	flag   bool
	ts     time.Time
}

// Empty returns the empty value.
func Empty() Value {
	return Value{}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// DateTime returns a timestamp value.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, ts: t}
}

// ErrorValue returns an error value carrying a failure reason.
func ErrorValue(reason string) Value {
	return Value{kind: KindError, text: reason}
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is the empty variant.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Text returns the string content of a text value, or "" for other kinds.
func (v Value) Text() string {
	if v.kind == KindText {
		return v.text
	}
	return ""
}

// Number returns the numeric content, or 0 for other kinds.
func (v Value) Number() float64 {
	if v.kind == KindNumber {
		return v.number
	}
	return 0
}

// Bool returns the boolean content, or false for other kinds.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.flag
}

// Time returns the timestamp content, or the zero time for other kinds.
func (v Value) Time() time.Time {
	if v.kind == KindDateTime {
		return v.ts
	}
	return time.Time{}
}

// ErrorReason returns the failure reason of an error value, or "".
func (v Value) ErrorReason() string {
	if v.kind == KindError {
		return v.text
	}
	return ""
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindText, KindError:
		return v.text == o.text
	case KindNumber:
		return v.number == o.number
	case KindBool:
		return v.flag == o.flag
	case KindDateTime:
		return v.ts.Equal(o.ts)
	default:
		return false
	}
}

// AsNumber attempts to read the value as a float64.
//
// # Description
//
// Numbers convert directly, booleans to 0/1, and text is parsed if it is a
// valid decimal number after trimming whitespace. Empty, datetime and error
// values do not convert.
//
// # Outputs
//
//   - float64: The numeric reading (0 when not convertible).
//   - bool: true when the value is usable as a number.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.number, true
	case KindBool:
		if v.flag {
			return 1, true
		}
		return 0, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsText renders any value as display text.
//
// Numbers use the shortest round-trip representation, datetimes RFC 3339
// date form (or full RFC 3339 when a time-of-day is present), errors render
// as "#ERROR: reason".
func (v Value) AsText() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindBool:
		if v.flag {
			return "TRUE"
		}
		return "FALSE"
	case KindDateTime:
		if v.ts.Hour() == 0 && v.ts.Minute() == 0 && v.ts.Second() == 0 {
			return v.ts.Format("2006-01-02")
		}
		return v.ts.Format(time.RFC3339)
	case KindError:
		return "#ERROR: " + v.text
	default:
		return ""
	}
}

// String implements fmt.Stringer via AsText.
func (v Value) String() string { return v.AsText() }
