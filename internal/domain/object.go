package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is a single member of an Object, kept as raw JSON so that values we
// never touch are written back byte for byte.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Object is a JSON object that remembers its key order.
type Object struct {
	fields []Field
	index  map[string]int
}

func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: got %s", ErrNotObject, describeToken(tok))
	}

	o.fields = nil
	o.index = make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode value of %q: %w", key, err)
		}
		o.set(key, value)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the member names in document order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for _, f := range o.fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func (o *Object) Len() int {
	return len(o.fields)
}

func (o *Object) Get(key string) (json.RawMessage, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

// Set encodes value and stores it under key. An existing key keeps its
// position, a new key is appended.
func (o *Object) Set(key string, value any) error {
	raw, err := encodeJSON(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	o.set(key, raw)
	return nil
}

// GetString returns the string stored under key.
func (o *Object) GetString(key string) (string, error) {
	raw, ok := o.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("%w: %q is null", ErrMissingField, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q is not a string: %w", key, err)
	}
	return s, nil
}

// Truthy reports whether key holds a value other than null, false, 0, "",
// [] or {}. A missing key is not truthy.
func (o *Object) Truthy(key string) bool {
	raw, ok := o.Get(key)
	if !ok {
		return false
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		// present and not null
		return true
	}

	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		// overflow parses to ±Inf, underflow to 0
		f, _ := strconv.ParseFloat(val.String(), 64)
		return f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func (o *Object) set(key string, value json.RawMessage) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = value
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// encodeJSON marshals without HTML escaping so URLs keep their '&'.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return string(v)
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
