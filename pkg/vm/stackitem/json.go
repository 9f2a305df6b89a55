package stackitem

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// MaxJSONDepth bounds recursion in ToJSON/FromJSON against maliciously
// nested input.
const MaxJSONDepth = 16

// ToJSON renders item as JSON following the reference's stack-item/JSON
// mapping: ByteString as a base64 string, Integer as a JSON number,
// Boolean as true/false, Null as null, Array/Struct as a JSON array, Map as
// a JSON object with base64-encoded keys, emitted in insertion order.
// Buffer, Pointer and InteropInterface have no JSON form.
func ToJSON(item Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, item, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, item Item, depth int) error {
	if depth > MaxJSONDepth {
		return fmt.Errorf("%w: json nesting too deep", ErrInvalidCast)
	}
	switch t := item.(type) {
	case Null:
		buf.WriteString("null")
		return nil
	case *Bool:
		if t.value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case *BigInteger:
		buf.WriteString(t.value.String())
		return nil
	case *ByteString:
		return writeJSONString(buf, t.value)
	case *Array:
		return writeJSONArray(buf, t.value, depth)
	case *Struct:
		return writeJSONArray(buf, t.value, depth)
	case *Map:
		buf.WriteByte('{')
		for i, e := range t.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := e.Key.TryBytes()
			if err != nil {
				return fmt.Errorf("%w: map key is not byte-convertible", ErrInvalidCast)
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("%w: %s has no JSON form", ErrInvalidCast, item.String())
	}
}

func writeJSONArray(buf *bytes.Buffer, items []Item, depth int) error {
	buf.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, it, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeJSONString encodes b as a base64 JSON string, delegating escaping to
// encoding/json since base64 output is already ASCII-safe aside from the
// surrounding quotes.
func writeJSONString(buf *bytes.Buffer, b []byte) error {
	enc, err := json.Marshal(base64.StdEncoding.EncodeToString(b))
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

// FromJSON parses JSON-encoded data back into a stack item using the same
// mapping as ToJSON. Numbers must be integral: "12.000" decodes to Integer
// 12, "12.01" is an error. Object key order is
// preserved via token streaming rather than encoding/json's unordered
// map[string]interface{} decode.
func FromJSON(data []byte) (Item, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	item, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing json data", ErrInvalidCast)
	}
	return item, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (Item, error) {
	if depth > MaxJSONDepth {
		return nil, fmt.Errorf("%w: json nesting too deep", ErrInvalidCast)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			var items []Item
			for dec.More() {
				it, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				items = append(items, it)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return NewArray(items), nil
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("%w: non-string json object key", ErrInvalidCast)
				}
				kb, err := base64.StdEncoding.DecodeString(key)
				if err != nil {
					return nil, fmt.Errorf("%w: invalid base64 object key", ErrInvalidCast)
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				if err := m.Set(NewByteArray(kb), val); err != nil {
					return nil, err
				}
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		default:
			return nil, fmt.Errorf("%w: unexpected json delimiter %v", ErrInvalidCast, v)
		}
	case nil:
		return Null{}, nil
	case bool:
		return NewBool(v), nil
	case json.Number:
		return jsonNumberToItem(string(v))
	case string:
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 string", ErrInvalidCast)
		}
		return NewByteArray(b), nil
	default:
		return nil, fmt.Errorf("%w: unsupported json token %T", ErrInvalidCast, v)
	}
}

// jsonNumberToItem requires the decimal string to denote an integral value,
// matching the reference's "json numbers must be integers" constraint.
func jsonNumberToItem(s string) (Item, error) {
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return NewBigInteger(n), nil
	}
	f := new(big.Float)
	if _, _, err := f.Parse(s, 10); err != nil {
		return nil, fmt.Errorf("%w: invalid json number %q", ErrInvalidCast, s)
	}
	n, acc := f.Int(nil)
	if acc != big.Exact {
		return nil, fmt.Errorf("%w: non-integral json number %q", ErrInvalidCast, s)
	}
	return NewBigInteger(n), nil
}
