package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value is a typed, independently nullable cell
type Value struct {
	Type         ValueType  `json:"type"`
	StringVal    *string    `json:"string_val,omitempty"`
	NumericVal   *float64   `json:"numeric_val,omitempty"`
	BooleanVal   *bool      `json:"boolean_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
	IsMissing    bool       `json:"is_missing"`
}

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// NewStringValue creates a string value; the empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: &b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: &t}
}

// NewMissingValue creates the missing-value marker
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// Missing reports whether v carries no valid value
func (v Value) Missing() bool {
	return v.IsMissing || v.Type == ValueTypeMissing
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// IsString returns true if the value represents a valid string
func (v Value) IsString() bool {
	return v.Type == ValueTypeString && v.StringVal != nil
}

// IsBoolean returns true if the value represents a valid boolean
func (v Value) IsBoolean() bool {
	return v.Type == ValueTypeBoolean && v.BooleanVal != nil
}

// IsTimestamp returns true if the value represents a valid timestamp
func (v Value) IsTimestamp() bool {
	return v.Type == ValueTypeTimestamp && v.TimestampVal != nil
}

// Float64 returns the number held by a numeric cell
func (v Value) Float64() (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return *v.NumericVal, true
}

// Text returns the string held by a string cell
func (v Value) Text() (string, bool) {
	if !v.IsString() {
		return "", false
	}
	return *v.StringVal, true
}

// Bool returns the boolean held by a boolean cell
func (v Value) Bool() (bool, bool) {
	if !v.IsBoolean() {
		return false, false
	}
	return *v.BooleanVal, true
}

// Time returns the timestamp held by a timestamp cell
func (v Value) Time() (time.Time, bool) {
	if !v.IsTimestamp() {
		return time.Time{}, false
	}
	return *v.TimestampVal, true
}

// Raw returns the Go value behind the cell, nil when missing
func (v Value) Raw() interface{} {
	switch {
	case v.IsString():
		return *v.StringVal
	case v.IsNumeric():
		return *v.NumericVal
	case v.IsBoolean():
		return *v.BooleanVal
	case v.IsTimestamp():
		return *v.TimestampVal
	}
	return nil
}

// String renders the cell for display and CSV export; missing cells are empty
func (v Value) String() string {
	switch {
	case v.IsString():
		return *v.StringVal
	case v.IsNumeric():
		return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
	case v.IsBoolean():
		return strconv.FormatBool(*v.BooleanVal)
	case v.IsTimestamp():
		t := *v.TimestampVal
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	}
	return ""
}

// Equal compares type and payload
func (v Value) Equal(other Value) bool {
	if v.Missing() || other.Missing() {
		return v.Missing() == other.Missing()
	}
	if v.Type != other.Type {
		return false
	}
	if v.IsTimestamp() {
		return v.TimestampVal.Equal(*other.TimestampVal)
	}
	return v.Raw() == other.Raw()
}

// MarshalJSON emits the plain JSON scalar, null for missing cells
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsTimestamp():
		return json.Marshal(v.TimestampVal.Format(time.RFC3339))
	case v.Missing():
		return []byte("null"), nil
	}
	raw := v.Raw()
	if raw == nil {
		return nil, fmt.Errorf("value of type %q has no payload", v.Type)
	}
	return json.Marshal(raw)
}
