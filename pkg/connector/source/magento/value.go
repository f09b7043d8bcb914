package magento

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Value is a scalar from the remote API. Magento returns numbers, booleans
// and strings interchangeably ("1", 1, true), so every scalar is kept as its
// textual form and converted on read.
type Value string

// UnmarshalJSON accepts strings, numbers, booleans and null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case bytes.Equal(data, []byte("true")):
		*v = "1"
	case bytes.Equal(data, []byte("false")):
		*v = ""
	case data[0] == '{' || data[0] == '[':
		// empty structures stand in for missing scalars
		*v = ""
	default:
		*v = Value(data)
	}
	return nil
}

// String returns the raw text
func (v Value) String() string {
	return string(v)
}

// Trim returns the text without surrounding whitespace
func (v Value) Trim() string {
	return strings.TrimSpace(string(v))
}

// IsEmpty reports whether the value is blank or the literal "0", mirroring
// how the source treats empty attributes
func (v Value) IsEmpty() bool {
	t := v.Trim()
	return t == "" || t == "0"
}

// Int parses the value, truncating decimals ("2.0000" is 2)
func (v Value) Int() int {
	t := v.Trim()
	if t == "" {
		return 0
	}
	if n, err := strconv.Atoi(t); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// Decimal parses the value as a decimal amount, zero when not numeric
func (v Value) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(v.Trim())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Bool is true for "1" and "true"
func (v Value) Bool() bool {
	t := strings.ToLower(v.Trim())
	return t == "1" || t == "true"
}

// Attributes keeps every field of a record so configured attribute names
// (variations, category and URL fields, custom attributes) can be read by name
type Attributes map[string]any

// Get returns the attribute and whether it is present and non-null
func (a Attributes) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok && v != nil
}

// String returns a scalar attribute as text
func (a Attributes) String(name string) string {
	v, ok := a.Get(name)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// Strings returns a list attribute as text values
func (a Attributes) Strings(name string) []string {
	v, ok := a.Get(name)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		if s := a.String(name); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	tmp := Attributes{}
	for _, item := range items {
		tmp["v"] = item
		if s := tmp.String("v"); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeWithAttributes decodes data into dst and also keeps all fields in attrs
func decodeWithAttributes(data []byte, dst any, attrs *Attributes) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	m := Attributes{}
	if err := json.Unmarshal(data, &m); err != nil {
		// lists and scalars carry no attributes
		return nil
	}
	*attrs = m
	return nil
}
