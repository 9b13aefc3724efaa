// Package codec provides the serialization strategies used for save payloads.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
)

// Extensions used on disk. The extension depends only on the codec.
const (
	ExtJSON   = ".json"
	ExtBinary = ".sav"
)

// ErrNotComposite is returned when a value is a primitive rather than a
// record-like type.
var ErrNotComposite = errors.New("codec: value must be a struct, map, slice or array")

// Codec encodes and decodes save payloads.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used for diagnostics.
	Name() string
	// Extension returns the file extension, including the leading dot.
	Extension() string
	// Binary reports whether Marshal output must be base64-wrapped to be
	// stored as text.
	Binary() bool
}

// CheckComposite returns ErrNotComposite unless v (after dereferencing
// pointers) is a struct, map, slice or array.
func CheckComposite(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return fmt.Errorf("%w: got nil", ErrNotComposite)
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return nil
	case reflect.Invalid:
		return fmt.Errorf("%w: got nil", ErrNotComposite)
	default:
		return fmt.Errorf("%w: got %s", ErrNotComposite, rv.Kind())
	}
}

// EncodeString marshals v with c and returns the textual payload.
func EncodeString(c Codec, v any) (string, error) {
	if err := CheckComposite(v); err != nil {
		return "", err
	}
	b, err := c.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%s marshal: %w", c.Name(), err)
	}
	if c.Binary() {
		return base64.StdEncoding.EncodeToString(b), nil
	}
	return string(b), nil
}

// DecodeString reverses EncodeString into dest.
func DecodeString(c Codec, payload string, dest any) error {
	if reflect.ValueOf(dest).Kind() != reflect.Pointer {
		return fmt.Errorf("%s unmarshal: destination must be a pointer, got %T", c.Name(), dest)
	}
	b := []byte(payload)
	if c.Binary() {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("%s unmarshal: %w", c.Name(), err)
		}
		b = raw
	}
	if err := c.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("%s unmarshal: %w", c.Name(), err)
	}
	return nil
}
